package profiles

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/domain/enums"
	"github.com/ivankudzin/matrimony/internal/domain/model"
	"github.com/ivankudzin/matrimony/internal/domain/rules"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
)

const (
	minAge       = 18
	maxBioLength = 500
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
	ErrForbidden     = errors.New("profile is private")
)

type ProfileStore interface {
	Create(ctx context.Context, p model.Profile) (model.Profile, error)
	Update(ctx context.Context, p model.Profile) (model.Profile, error)
	GetByID(ctx context.Context, id int64) (model.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	GetByDisplayID(ctx context.Context, displayID string) (model.Profile, error)
	SetPremium(ctx context.Context, userID int64, expiresAt *time.Time, at time.Time) (model.Profile, error)
}

type DisplaySequence interface {
	NextDisplayNumber(ctx context.Context) (int64, error)
}

type PhotoSigner interface {
	PhotoURL(ctx context.Context, ref string) string
}

type ViewRecorder interface {
	RecordView(ctx context.Context, viewerUserID, profileID int64) error
}

// Input carries every editable section of a profile. On update a nil
// section keeps the stored value.
type Input struct {
	Personal     *model.PersonalInfo
	Professional *model.ProfessionalInfo
	Family       *model.FamilyInfo
	Location     *model.Location
	Religious    *model.ReligiousInfo
	Lifestyle    *model.Lifestyle
	Photos       []model.Photo
	Documents    []model.Document
	Privacy      *model.Privacy
}

type VerificationInput struct {
	IDVerified        *bool
	PhotoVerified     *bool
	EducationVerified *bool
	IncomeVerified    *bool
}

type Service struct {
	store    ProfileStore
	sequence DisplaySequence
	photos   PhotoSigner
	views    ViewRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store ProfileStore, sequence DisplaySequence, photos PhotoSigner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		sequence: sequence,
		photos:   photos,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) AttachViews(views ViewRecorder) {
	s.views = views
}

func (s *Service) Create(ctx context.Context, userID int64, in Input) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil || s.sequence == nil {
		return model.Profile{}, fmt.Errorf("profile dependencies are not configured")
	}
	if in.Personal == nil || in.Location == nil || in.Religious == nil {
		return model.Profile{}, fmt.Errorf("personal, location and religious sections are required: %w", ErrValidation)
	}

	if _, err := s.store.GetByUserID(ctx, userID); err == nil {
		return model.Profile{}, ErrAlreadyExists
	} else if !errors.Is(err, pgrepo.ErrProfileNotFound) {
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	now := s.now().UTC()
	p := model.Profile{
		UserID: userID,
		Privacy: model.Privacy{
			ShowPhotos: enums.PhotoVisibilityAll,
			Visibility: enums.VisibilityPublic,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(&p, in)
	stampMedia(&p, now)

	if err := validateProfile(p, now); err != nil {
		return model.Profile{}, err
	}
	p.ProfileCompleted = rules.ProfileCompleted(p)

	n, err := s.sequence.NextDisplayNumber(ctx)
	if err != nil {
		return model.Profile{}, fmt.Errorf("allocate display id: %w", err)
	}
	p.DisplayID = rules.FormatDisplayID(n)

	created, err := s.store.Create(ctx, p)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileExists) {
			return model.Profile{}, ErrAlreadyExists
		}
		return model.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return created, nil
}

func (s *Service) GetMine(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	return s.wrapLookup(s.store.GetByUserID(ctx, userID))
}

// Resolve looks a profile up by display id (MAT0XXXXX) or numeric profile id,
// without any visibility check.
func (s *Service) Resolve(ctx context.Context, ref string) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	ref = strings.TrimSpace(ref)
	if rules.IsDisplayID(ref) {
		return s.wrapLookup(s.store.GetByDisplayID(ctx, strings.ToUpper(ref)))
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile reference %q: %w", ref, ErrValidation)
	}
	return s.wrapLookup(s.store.GetByID(ctx, id))
}

func (s *Service) GetByRef(ctx context.Context, viewerUserID int64, ref string) (model.Profile, error) {
	p, err := s.Resolve(ctx, ref)
	if err != nil {
		return model.Profile{}, err
	}
	if p.UserID != viewerUserID && !p.Discoverable() {
		return model.Profile{}, ErrForbidden
	}
	return p, nil
}

// View is GetByRef plus a recorded profile view. A failed view record is
// logged and does not fail the read.
func (s *Service) View(ctx context.Context, viewerUserID int64, ref string) (model.Profile, error) {
	p, err := s.GetByRef(ctx, viewerUserID, ref)
	if err != nil {
		return model.Profile{}, err
	}
	if s.views != nil && p.UserID != viewerUserID {
		if err := s.views.RecordView(ctx, viewerUserID, p.ID); err != nil {
			s.logger.Warn("record profile view failed",
				zap.Int64("viewer_id", viewerUserID),
				zap.Int64("profile_id", p.ID),
				zap.Error(err),
			)
		} else {
			p.Stats.Views++
		}
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID int64, in Input) (model.Profile, error) {
	p, err := s.GetMine(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	applyInput(&p, in)
	stampMedia(&p, now)
	if err := validateProfile(p, now); err != nil {
		return model.Profile{}, err
	}
	p.ProfileCompleted = rules.ProfileCompleted(p)
	p.UpdatedAt = now

	return s.wrapLookup(s.store.Update(ctx, p))
}

func (s *Service) UpdatePrivacy(ctx context.Context, userID int64, privacy model.Privacy) (model.Profile, error) {
	if !privacy.Visibility.Valid() || !privacy.ShowPhotos.Valid() {
		return model.Profile{}, fmt.Errorf("invalid privacy settings: %w", ErrValidation)
	}
	p, err := s.GetMine(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}
	p.Privacy = privacy
	p.UpdatedAt = s.now().UTC()

	return s.wrapLookup(s.store.Update(ctx, p))
}

// SetVerification applies the given flags to the profile owned by userID.
// VerifiedAt is stamped the first time any flag becomes true and kept after.
func (s *Service) SetVerification(ctx context.Context, userID int64, in VerificationInput) (model.Profile, error) {
	p, err := s.GetMine(ctx, userID)
	if err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	p.Verification = applyVerification(p.Verification, in, now)
	p.UpdatedAt = now

	return s.wrapLookup(s.store.Update(ctx, p))
}

// SetPremium grants premium until expiresAt; a nil expiry revokes it.
func (s *Service) SetPremium(ctx context.Context, userID int64, expiresAt *time.Time) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	now := s.now().UTC()
	if expiresAt != nil && !expiresAt.After(now) {
		return model.Profile{}, fmt.Errorf("premium expiry must be in the future: %w", ErrValidation)
	}
	return s.wrapLookup(s.store.SetPremium(ctx, userID, expiresAt, now))
}

// Summary is the compact card shown in match, interaction and chat lists.
func (s *Service) Summary(ctx context.Context, p model.Profile) model.ProfileSummary {
	summary := model.ProfileSummary{
		ID:            p.ID,
		UserID:        p.UserID,
		DisplayID:     p.DisplayID,
		FirstName:     p.Personal.FirstName,
		LastName:      p.Personal.LastName,
		Age:           rules.AgeAt(p.Personal.DateOfBirth, s.now()),
		Gender:        p.Personal.Gender,
		MaritalStatus: p.Personal.MaritalStatus,
		HeightCM:      p.Personal.HeightCM,
		Religion:      p.Religious.Religion,
		Education:     p.Professional.Education,
		Occupation:    p.Professional.Occupation,
		City:          p.Location.City,
		State:         p.Location.State,
		Country:       p.Location.Country,
		IsPremium:     p.IsPremium,
		IsVerified:    p.Verification.Any(),
	}
	if p.Privacy.ShowPhotos != enums.PhotoVisibilityNone && s.photos != nil {
		if photo, ok := p.PrimaryPhoto(); ok {
			summary.PhotoURL = s.photos.PhotoURL(ctx, photo.URL)
		}
	}
	return summary
}

func (s *Service) wrapLookup(p model.Profile, err error) (model.Profile, error) {
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}
	return p, nil
}

func applyInput(p *model.Profile, in Input) {
	if in.Personal != nil {
		p.Personal = *in.Personal
		p.Personal.FirstName = strings.TrimSpace(p.Personal.FirstName)
		p.Personal.LastName = strings.TrimSpace(p.Personal.LastName)
		p.Personal.Bio = strings.TrimSpace(p.Personal.Bio)
	}
	if in.Professional != nil {
		p.Professional = *in.Professional
	}
	if in.Family != nil {
		p.Family = *in.Family
	}
	if in.Location != nil {
		p.Location = model.Location{
			Country: strings.TrimSpace(in.Location.Country),
			State:   strings.TrimSpace(in.Location.State),
			City:    strings.TrimSpace(in.Location.City),
		}
	}
	if in.Religious != nil {
		p.Religious = *in.Religious
		p.Religious.Religion = strings.TrimSpace(p.Religious.Religion)
	}
	if in.Lifestyle != nil {
		p.Lifestyle = *in.Lifestyle
	}
	if in.Photos != nil {
		p.Photos = in.Photos
	}
	if in.Documents != nil {
		p.Documents = in.Documents
	}
	if in.Privacy != nil {
		p.Privacy = *in.Privacy
	}
}

func stampMedia(p *model.Profile, now time.Time) {
	for i := range p.Photos {
		if p.Photos[i].ID == "" {
			p.Photos[i].ID = uuid.NewString()
		}
		if p.Photos[i].UploadedAt.IsZero() {
			p.Photos[i].UploadedAt = now
		}
	}
	for i := range p.Documents {
		if p.Documents[i].ID == "" {
			p.Documents[i].ID = uuid.NewString()
		}
		if p.Documents[i].UploadedAt.IsZero() {
			p.Documents[i].UploadedAt = now
		}
	}
}

func applyVerification(v model.Verification, in VerificationInput, now time.Time) model.Verification {
	hadAny := v.Any()
	if in.IDVerified != nil {
		v.IDVerified = *in.IDVerified
	}
	if in.PhotoVerified != nil {
		v.PhotoVerified = *in.PhotoVerified
	}
	if in.EducationVerified != nil {
		v.EducationVerified = *in.EducationVerified
	}
	if in.IncomeVerified != nil {
		v.IncomeVerified = *in.IncomeVerified
	}
	if !hadAny && v.Any() && v.VerifiedAt == nil {
		at := now
		v.VerifiedAt = &at
	}
	return v
}

func validateProfile(p model.Profile, now time.Time) error {
	personal := p.Personal
	if personal.FirstName == "" || personal.LastName == "" {
		return fmt.Errorf("first and last name are required: %w", ErrValidation)
	}
	if personal.DateOfBirth.IsZero() {
		return fmt.Errorf("date of birth is required: %w", ErrValidation)
	}
	if rules.AgeAt(personal.DateOfBirth, now) < minAge {
		return fmt.Errorf("profile owner must be at least %d: %w", minAge, ErrValidation)
	}
	if !personal.Gender.Valid() {
		return fmt.Errorf("invalid gender %q: %w", personal.Gender, ErrValidation)
	}
	if !personal.MaritalStatus.Valid() {
		return fmt.Errorf("invalid marital status %q: %w", personal.MaritalStatus, ErrValidation)
	}
	if personal.HeightCM < 0 || personal.WeightKG < 0 {
		return fmt.Errorf("height and weight must not be negative: %w", ErrValidation)
	}
	if utf8.RuneCountInString(personal.Bio) > maxBioLength {
		return fmt.Errorf("bio exceeds %d characters: %w", maxBioLength, ErrValidation)
	}

	if p.Location.Country == "" || p.Location.State == "" || p.Location.City == "" {
		return fmt.Errorf("country, state and city are required: %w", ErrValidation)
	}
	if p.Religious.Religion == "" {
		return fmt.Errorf("religion is required: %w", ErrValidation)
	}

	if v := p.Professional.EmployedIn; v != "" && !v.Valid() {
		return fmt.Errorf("invalid employed_in %q: %w", v, ErrValidation)
	}
	if v := p.Family.FamilyType; v != "" && !v.Valid() {
		return fmt.Errorf("invalid family type %q: %w", v, ErrValidation)
	}
	if v := p.Lifestyle.Diet; v != "" && !v.Valid() {
		return fmt.Errorf("invalid diet %q: %w", v, ErrValidation)
	}
	for _, habit := range []enums.Habit{p.Lifestyle.Smoking, p.Lifestyle.Drinking} {
		if habit != "" && !habit.Valid() {
			return fmt.Errorf("invalid habit %q: %w", habit, ErrValidation)
		}
	}

	primary := 0
	for _, photo := range p.Photos {
		if strings.TrimSpace(photo.URL) == "" {
			return fmt.Errorf("photo url is required: %w", ErrValidation)
		}
		if photo.IsProfile {
			primary++
		}
	}
	if primary > 1 {
		return fmt.Errorf("at most one profile photo is allowed: %w", ErrValidation)
	}
	for _, doc := range p.Documents {
		if !doc.Type.Valid() || strings.TrimSpace(doc.URL) == "" {
			return fmt.Errorf("invalid document: %w", ErrValidation)
		}
	}

	if !p.Privacy.Visibility.Valid() || !p.Privacy.ShowPhotos.Valid() {
		return fmt.Errorf("invalid privacy settings: %w", ErrValidation)
	}
	return nil
}
