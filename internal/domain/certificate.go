package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Certificate is a graded gemstone report. The reference number is the
// public natural key (printed on the physical report); the numeric id is
// internal only and never reused after deletion.
type Certificate struct {
	ID              uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReferenceNumber string `gorm:"column:reference_number;uniqueIndex;not null" json:"reference_number"`

	GemType    string `gorm:"column:gem_type" json:"gem_type,omitempty"`
	Shape      string `gorm:"column:shape" json:"shape,omitempty"`
	Dimensions string `gorm:"column:dimensions" json:"dimensions,omitempty"`

	// Core grading fields, required on creation.
	CaratWeight  string `gorm:"column:carat_weight;not null" json:"carat_weight"`
	ColorGrade   string `gorm:"column:color_grade;not null" json:"color_grade"`
	ClarityGrade string `gorm:"column:clarity_grade;not null" json:"clarity_grade"`
	CutGrade     string `gorm:"column:cut_grade;not null" json:"cut_grade"`

	Polish       string `gorm:"column:polish" json:"polish,omitempty"`
	Symmetry     string `gorm:"column:symmetry" json:"symmetry,omitempty"`
	Fluorescence string `gorm:"column:fluorescence" json:"fluorescence,omitempty"`
	Treatment    string `gorm:"column:treatment" json:"treatment,omitempty"`
	Origin       string `gorm:"column:origin" json:"origin,omitempty"`

	// Proportions, numeric strings as printed on the report.
	TablePercentage string `gorm:"column:table_percentage" json:"table_percentage,omitempty"`
	DepthPercentage string `gorm:"column:depth_percentage" json:"depth_percentage,omitempty"`
	CrownAngle      string `gorm:"column:crown_angle" json:"crown_angle,omitempty"`
	PavilionAngle   string `gorm:"column:pavilion_angle" json:"pavilion_angle,omitempty"`

	Inscription string `gorm:"column:inscription" json:"inscription,omitempty"`
	Comments    string `gorm:"column:comments" json:"comments,omitempty"`
	ExaminedBy  string `gorm:"column:examined_by" json:"examined_by,omitempty"`
	ApprovedBy  string `gorm:"column:approved_by" json:"approved_by,omitempty"`
	LabLocation string `gorm:"column:lab_location" json:"lab_location,omitempty"`
	Filename    string `gorm:"column:filename" json:"filename,omitempty"`

	IssueDate  *datatypes.Date `gorm:"column:issue_date" json:"issue_date,omitempty"`
	ReportDate *datatypes.Date `gorm:"column:report_date" json:"report_date,omitempty"`

	// UploadDate is set once at creation and never updated afterwards.
	UploadDate time.Time `gorm:"column:upload_date;not null" json:"upload_date"`

	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "Certificates"
}
