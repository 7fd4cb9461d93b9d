package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/founderbridge/onboarding/internal/platform/logging"
)

// Collection names form the wire contract with the original client app.
const (
	developersCollection = "candidates"
	recruitersCollection = "recruiters"
)

func collectionFor(role Role) (string, error) {
	switch role {
	case RoleDeveloper:
		return developersCollection, nil
	case RoleRecruiter:
		return recruitersCollection, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// developerDoc maps to the candidates collection document structure.
type developerDoc struct {
	DisplayName  string    `firestore:"displayName"`
	Email        string    `firestore:"email"`
	AvatarURL    string    `firestore:"avatarUrl"`
	Skills       []string  `firestore:"skills"`
	Experience   string    `firestore:"experienceLevel"`
	Bio          string    `firestore:"bio"`
	GithubHandle string    `firestore:"githubHandle"`
	LinkedinURL  string    `firestore:"linkedinUrl"`
	PortfolioURL string    `firestore:"portfolioUrl"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// recruiterDoc maps to the recruiters collection document structure. The
// "role" field holds the recruiter's position title, not the discriminator;
// the discriminator is the collection itself.
type recruiterDoc struct {
	DisplayName    string    `firestore:"displayName"`
	Email          string    `firestore:"email"`
	AvatarURL      string    `firestore:"avatarUrl"`
	Company        string    `firestore:"company"`
	Position       string    `firestore:"role"`
	CompanySize    string    `firestore:"companySize"`
	Industry       string    `firestore:"industry"`
	Bio            string    `firestore:"bio"`
	CompanyWebsite string    `firestore:"companyWebsite"`
	LinkedinURL    string    `firestore:"linkedinUrl"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

// FirestoreStore implements Store on two Firestore collections.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: time.Now}
}

// Upsert writes the profile into its role's collection. CreatedAt is read
// inside a transaction and preserved when the document already exists;
// UpdatedAt is always refreshed.
func (s *FirestoreStore) Upsert(ctx context.Context, p Profile) error {
	col, err := collectionFor(p.Role())
	if err != nil {
		return &StoreError{Kind: StoreUnknown, Detail: err.Error(), cause: err}
	}

	base := BaseOf(p)
	docRef := s.client.Collection(col).Doc(base.ID)
	now := s.now().UTC()

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		createdAt := now
		doc, err := tx.Get(docRef)
		switch {
		case err == nil && doc.Exists():
			if prior, derr := doc.DataAt("createdAt"); derr == nil {
				if t, ok := prior.(time.Time); ok && !t.IsZero() {
					createdAt = t
				}
			}
		case err != nil && status.Code(err) != codes.NotFound:
			return err
		}

		return tx.Set(docRef, docFor(p, createdAt, now))
	})
	if err != nil {
		se := wrapStatusError(err)
		applog.LogAuditEvent(ctx, "upsert", base.ID, "profile", base.ID, "failure",
			map[string]any{"role": string(p.Role()), "error": se.Kind.String()})
		return se
	}

	applog.LogAuditEvent(ctx, "upsert", base.ID, "profile", base.ID, "success",
		map[string]any{"role": string(p.Role())})

	return nil
}

// Get retrieves a profile by id from the collection for the known role.
func (s *FirestoreStore) Get(ctx context.Context, id string, role Role) (Profile, error) {
	col, err := collectionFor(role)
	if err != nil {
		return nil, &StoreError{Kind: StoreUnknown, Detail: err.Error(), cause: err}
	}

	doc, err := s.client.Collection(col).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, wrapStatusError(err)
	}

	switch role {
	case RoleDeveloper:
		var d developerDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, &StoreError{Kind: StoreUnknown, Detail: err.Error(), cause: err}
		}
		return &DeveloperProfile{
			Base:         baseFromDoc(id, d.DisplayName, d.Email, d.AvatarURL, d.CreatedAt, d.UpdatedAt),
			Skills:       d.Skills,
			Experience:   ExperienceLevel(d.Experience),
			Bio:          d.Bio,
			GithubHandle: d.GithubHandle,
			LinkedinURL:  d.LinkedinURL,
			PortfolioURL: d.PortfolioURL,
		}, nil
	default:
		var r recruiterDoc
		if err := doc.DataTo(&r); err != nil {
			return nil, &StoreError{Kind: StoreUnknown, Detail: err.Error(), cause: err}
		}
		return &RecruiterProfile{
			Base:           baseFromDoc(id, r.DisplayName, r.Email, r.AvatarURL, r.CreatedAt, r.UpdatedAt),
			Company:        r.Company,
			Position:       r.Position,
			CompanySize:    CompanySize(r.CompanySize),
			Industry:       Industry(r.Industry),
			Bio:            r.Bio,
			CompanyWebsite: r.CompanyWebsite,
			LinkedinURL:    r.LinkedinURL,
		}, nil
	}
}

func docFor(p Profile, createdAt, updatedAt time.Time) any {
	base := BaseOf(p)
	email := strings.ToLower(strings.TrimSpace(base.Email))

	switch v := p.(type) {
	case *DeveloperProfile:
		return developerDoc{
			DisplayName:  base.DisplayName,
			Email:        email,
			AvatarURL:    base.AvatarURL,
			Skills:       v.Skills,
			Experience:   string(v.Experience),
			Bio:          v.Bio,
			GithubHandle: v.GithubHandle,
			LinkedinURL:  v.LinkedinURL,
			PortfolioURL: v.PortfolioURL,
			CreatedAt:    createdAt,
			UpdatedAt:    updatedAt,
		}
	case *RecruiterProfile:
		return recruiterDoc{
			DisplayName:    base.DisplayName,
			Email:          email,
			AvatarURL:      base.AvatarURL,
			Company:        v.Company,
			Position:       v.Position,
			CompanySize:    string(v.CompanySize),
			Industry:       string(v.Industry),
			Bio:            v.Bio,
			CompanyWebsite: v.CompanyWebsite,
			LinkedinURL:    v.LinkedinURL,
			CreatedAt:      createdAt,
			UpdatedAt:      updatedAt,
		}
	default:
		return nil
	}
}

func baseFromDoc(id, displayName, email, avatarURL string, createdAt, updatedAt time.Time) Base {
	return Base{
		ID:          id,
		DisplayName: displayName,
		Email:       email,
		AvatarURL:   avatarURL,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Compile-time interface check
var _ Store = (*FirestoreStore)(nil)
