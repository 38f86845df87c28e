package certificates

import (
	"context"
	"errors"
	"time"

	"gemlab-backend/internal/domain"
	"gemlab-backend/internal/pkg/validation"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns certificate storage: keyed reads, uniqueness enforcement and
// the active/inactive lifecycle. All mutations are immediately visible to
// subsequent reads.
type Service struct {
	DB *gorm.DB
}

// CreateInput carries a new certificate. The four core grading fields and
// the reference number are required; everything else is optional.
type CreateInput struct {
	ReferenceNumber string `json:"reference_number"`

	GemType    string `json:"gem_type"`
	Shape      string `json:"shape"`
	Dimensions string `json:"dimensions"`

	CaratWeight  string `json:"carat_weight"`
	ColorGrade   string `json:"color_grade"`
	ClarityGrade string `json:"clarity_grade"`
	CutGrade     string `json:"cut_grade"`

	Polish       string `json:"polish"`
	Symmetry     string `json:"symmetry"`
	Fluorescence string `json:"fluorescence"`
	Treatment    string `json:"treatment"`
	Origin       string `json:"origin"`

	TablePercentage string `json:"table_percentage"`
	DepthPercentage string `json:"depth_percentage"`
	CrownAngle      string `json:"crown_angle"`
	PavilionAngle   string `json:"pavilion_angle"`

	Inscription string `json:"inscription"`
	Comments    string `json:"comments"`
	ExaminedBy  string `json:"examined_by"`
	ApprovedBy  string `json:"approved_by"`
	LabLocation string `json:"lab_location"`
	Filename    string `json:"filename"`

	IssueDate  *datatypes.Date `json:"issue_date"`
	ReportDate *datatypes.Date `json:"report_date"`

	IsActive *bool `json:"is_active"`
}

func (in *CreateInput) validate() error {
	if in.ReferenceNumber == "" {
		return missingField("reference_number")
	}
	if !validation.IsValidReferenceNumber(in.ReferenceNumber) {
		return malformedField("reference_number", "must be 6-64 letters, digits or hyphens")
	}
	required := []struct {
		name, value string
	}{
		{"carat_weight", in.CaratWeight},
		{"color_grade", in.ColorGrade},
		{"clarity_grade", in.ClarityGrade},
		{"cut_grade", in.CutGrade},
	}
	for _, f := range required {
		if f.value == "" {
			return missingField(f.name)
		}
	}
	return validateProportions(map[string]string{
		"table_percentage": in.TablePercentage,
		"depth_percentage": in.DepthPercentage,
		"crown_angle":      in.CrownAngle,
		"pavilion_angle":   in.PavilionAngle,
	})
}

func validateProportions(fields map[string]string) error {
	for name, value := range fields {
		if value != "" && !validation.IsNumericString(value) {
			return malformedField(name, "must be a decimal number")
		}
	}
	return nil
}

// Create validates the input and inserts the certificate. The duplicate
// check and the insert run in one transaction so two concurrent creates
// with the same reference cannot both pass; the unique index on
// reference_number backstops engines that race anyway.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Certificate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	cert := &domain.Certificate{
		ReferenceNumber: in.ReferenceNumber,
		GemType:         in.GemType,
		Shape:           in.Shape,
		Dimensions:      in.Dimensions,
		CaratWeight:     in.CaratWeight,
		ColorGrade:      in.ColorGrade,
		ClarityGrade:    in.ClarityGrade,
		CutGrade:        in.CutGrade,
		Polish:          in.Polish,
		Symmetry:        in.Symmetry,
		Fluorescence:    in.Fluorescence,
		Treatment:       in.Treatment,
		Origin:          in.Origin,
		TablePercentage: in.TablePercentage,
		DepthPercentage: in.DepthPercentage,
		CrownAngle:      in.CrownAngle,
		PavilionAngle:   in.PavilionAngle,
		Inscription:     in.Inscription,
		Comments:        in.Comments,
		ExaminedBy:      in.ExaminedBy,
		ApprovedBy:      in.ApprovedBy,
		LabLocation:     in.LabLocation,
		Filename:        in.Filename,
		IssueDate:       in.IssueDate,
		ReportDate:      in.ReportDate,
		UploadDate:      time.Now().UTC(),
		IsActive:        true,
	}
	if in.IsActive != nil {
		cert.IsActive = *in.IsActive
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Certificate{}).
			Where("reference_number = ?", in.ReferenceNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReference
		}
		return tx.Create(cert).Error
	})
	if err != nil {
		return nil, mapDuplicateErr(err)
	}
	return cert, nil
}

// mapDuplicateErr turns a driver unique-violation (translated by GORM into
// gorm.ErrDuplicatedKey) into the store's duplicate sentinel. This is the
// backstop for races where two writes pass the count check together.
func mapDuplicateErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReference
	}
	return err
}

// GetByReference does an exact, case-sensitive lookup by reference number.
func (s *Service) GetByReference(ctx context.Context, ref string) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := s.DB.WithContext(ctx).Where("reference_number = ?", ref).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := s.DB.WithContext(ctx).First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// List returns all certificates in insertion (id) order. Scale is small
// (bulk upload caps at 1000 rows per file); no pagination.
func (s *Service) List(ctx context.Context) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&domain.Certificate{}).Count(&count).Error
	return count, err
}

// UpdateInput is a partial update: nil pointers leave the field untouched.
// The id and upload date are immutable.
type UpdateInput struct {
	ReferenceNumber *string `json:"reference_number"`

	GemType    *string `json:"gem_type"`
	Shape      *string `json:"shape"`
	Dimensions *string `json:"dimensions"`

	CaratWeight  *string `json:"carat_weight"`
	ColorGrade   *string `json:"color_grade"`
	ClarityGrade *string `json:"clarity_grade"`
	CutGrade     *string `json:"cut_grade"`

	Polish       *string `json:"polish"`
	Symmetry     *string `json:"symmetry"`
	Fluorescence *string `json:"fluorescence"`
	Treatment    *string `json:"treatment"`
	Origin       *string `json:"origin"`

	TablePercentage *string `json:"table_percentage"`
	DepthPercentage *string `json:"depth_percentage"`
	CrownAngle      *string `json:"crown_angle"`
	PavilionAngle   *string `json:"pavilion_angle"`

	Inscription *string `json:"inscription"`
	Comments    *string `json:"comments"`
	ExaminedBy  *string `json:"examined_by"`
	ApprovedBy  *string `json:"approved_by"`
	LabLocation *string `json:"lab_location"`
	Filename    *string `json:"filename"`

	IssueDate  *datatypes.Date `json:"issue_date"`
	ReportDate *datatypes.Date `json:"report_date"`

	IsActive *bool `json:"is_active"`
}

func (in *UpdateInput) validate() error {
	if in.ReferenceNumber != nil && !validation.IsValidReferenceNumber(*in.ReferenceNumber) {
		return malformedField("reference_number", "must be 6-64 letters, digits or hyphens")
	}
	core := map[string]*string{
		"carat_weight":  in.CaratWeight,
		"color_grade":   in.ColorGrade,
		"clarity_grade": in.ClarityGrade,
		"cut_grade":     in.CutGrade,
	}
	for name, value := range core {
		if value != nil && *value == "" {
			return malformedField(name, "cannot be cleared")
		}
	}
	props := map[string]string{}
	for name, value := range map[string]*string{
		"table_percentage": in.TablePercentage,
		"depth_percentage": in.DepthPercentage,
		"crown_angle":      in.CrownAngle,
		"pavilion_angle":   in.PavilionAngle,
	} {
		if value != nil {
			props[name] = *value
		}
	}
	return validateProportions(props)
}

func (in *UpdateInput) changes() map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("reference_number", in.ReferenceNumber)
	set("gem_type", in.GemType)
	set("shape", in.Shape)
	set("dimensions", in.Dimensions)
	set("carat_weight", in.CaratWeight)
	set("color_grade", in.ColorGrade)
	set("clarity_grade", in.ClarityGrade)
	set("cut_grade", in.CutGrade)
	set("polish", in.Polish)
	set("symmetry", in.Symmetry)
	set("fluorescence", in.Fluorescence)
	set("treatment", in.Treatment)
	set("origin", in.Origin)
	set("table_percentage", in.TablePercentage)
	set("depth_percentage", in.DepthPercentage)
	set("crown_angle", in.CrownAngle)
	set("pavilion_angle", in.PavilionAngle)
	set("inscription", in.Inscription)
	set("comments", in.Comments)
	set("examined_by", in.ExaminedBy)
	set("approved_by", in.ApprovedBy)
	set("lab_location", in.LabLocation)
	set("filename", in.Filename)
	if in.IssueDate != nil {
		updates["issue_date"] = *in.IssueDate
	}
	if in.ReportDate != nil {
		updates["report_date"] = *in.ReportDate
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	return updates
}

// Update merges the supplied fields into an existing certificate. Moving the
// reference number onto a value held by another record fails with
// ErrDuplicateReference; the check shares a transaction with the write.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*domain.Certificate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	updates := in.changes()

	var cert domain.Certificate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cert, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if in.ReferenceNumber != nil && *in.ReferenceNumber != cert.ReferenceNumber {
			var count int64
			if err := tx.Model(&domain.Certificate{}).
				Where("reference_number = ? AND id <> ?", *in.ReferenceNumber, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateReference
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&cert).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&cert, id).Error
	})
	if err != nil {
		return nil, mapDuplicateErr(err)
	}
	return &cert, nil
}

// SetActive toggles the lifecycle flag only.
func (s *Service) SetActive(ctx context.Context, id uint, active bool) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := s.DB.WithContext(ctx).First(&cert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&cert).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	cert.IsActive = active
	return &cert, nil
}

// Delete hard-deletes by id. Returns false when nothing was removed, so a
// second delete of the same id is a no-op rather than an error.
func (s *Service) Delete(ctx context.Context, id uint) (bool, error) {
	res := s.DB.WithContext(ctx).Delete(&domain.Certificate{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// VerifyResult is the public verification outcome. Not-found and inactive
// are normal responses, not errors.
type VerifyResult struct {
	IsValid     bool                `json:"is_valid"`
	Certificate *domain.Certificate `json:"certificate,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// Verify looks up a reference number for the public verification page.
// Inactive certificates do not verify as valid; the admin view still sees
// them via GetByID.
func (s *Service) Verify(ctx context.Context, ref string) (*VerifyResult, error) {
	cert, err := s.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &VerifyResult{IsValid: false, Message: "Certificate not found"}, nil
		}
		return nil, err
	}
	if !cert.IsActive {
		return &VerifyResult{IsValid: false, Message: "Certificate not found or inactive"}, nil
	}
	return &VerifyResult{IsValid: true, Certificate: cert}, nil
}
