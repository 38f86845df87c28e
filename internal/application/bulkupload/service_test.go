package bulkupload

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gemlab-backend/internal/application/certificates"
	"gemlab-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBulkService(t *testing.T) (*Service, *certificates.Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Certificate{}))
	store := &certificates.Service{DB: db}
	return &Service{Store: store}, store
}

const header = "reference_number,carat_weight,color_grade,clarity_grade,cut_grade,gem_type\n"

func TestImport_AllRowsValid(t *testing.T) {
	s, store := setupBulkService(t)

	csv := header +
		"GIL-2024-100001,1.25,H,VS1,Excellent,Diamond\n" +
		"GIL-2024-100002,0.90,D,IF,Very Good,Diamond\n"

	report, err := s.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Errors)

	cert, err := store.GetByReference(context.Background(), "GIL-2024-100002")
	require.NoError(t, err)
	assert.Equal(t, "IF", cert.ClarityGrade)
	assert.Equal(t, "Diamond", cert.GemType)
	assert.True(t, cert.IsActive)
}

func TestImport_RowsFailIndependently(t *testing.T) {
	s, store := setupBulkService(t)

	csv := header +
		"GIL-2024-100003,1.00,G,VS2,Good,Diamond\n" +
		"GIL-2024-100003,1.00,G,VS2,Good,Diamond\n" + // duplicate
		"GIL-2024-100004,,G,VS2,Good,Diamond\n" + // missing carat
		"GIL-2024-100005,2.10,F,VVS1,Excellent,Diamond\n"

	report, err := s.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, certificates.ErrDuplicateReference.Error(), report.Errors[0].Message)
	assert.Equal(t, 3, report.Errors[1].Row)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestImport_MissingRequiredColumn(t *testing.T) {
	s, _ := setupBulkService(t)

	csv := "reference_number,carat_weight,color_grade,clarity_grade\n" +
		"GIL-2024-100006,1.00,G,VS2\n"

	_, err := s.Import(context.Background(), strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrMissingCols)
}

func TestImport_EmptyFile(t *testing.T) {
	s, _ := setupBulkService(t)

	_, err := s.Import(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = s.Import(context.Background(), strings.NewReader(header))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImport_TooManyRows(t *testing.T) {
	s, store := setupBulkService(t)

	var b strings.Builder
	b.WriteString(header)
	for i := 0; i <= MaxRows; i++ {
		fmt.Fprintf(&b, "GIL-2024-%06d,1.00,G,VS2,Good,Diamond\n", i)
	}

	_, err := s.Import(context.Background(), strings.NewReader(b.String()))
	assert.ErrorIs(t, err, ErrTooManyRows)

	// An oversized file is rejected whole; no rows persist.
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestImport_UnknownColumnsIgnored(t *testing.T) {
	s, store := setupBulkService(t)

	csv := "reference_number,carat_weight,color_grade,clarity_grade,cut_grade,rarity_score\n" +
		"GIL-2024-100007,1.50,E,VVS2,Excellent,99\n"

	report, err := s.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	_, err = store.GetByReference(context.Background(), "GIL-2024-100007")
	assert.NoError(t, err)
}
