package provider_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/pkg/remote"
)

func sampleMetadata() remote.Metadata {
	return remote.Metadata{
		Name:        "report.pdf",
		IsDirectory: false,
		Size:        2048,
		ModTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MIMEType:    "application/pdf",
	}
}

// TestProject_AllFields verifies every requested field is copied.
func TestProject_AllFields(t *testing.T) {
	t.Parallel()

	out := provider.Project(sampleMetadata(), provider.FieldWants{
		Name:             true,
		IsDirectory:      true,
		Size:             true,
		ModificationTime: true,
		MIMEType:         true,
	})

	require.NotNil(t, out.Name)
	assert.Equal(t, "report.pdf", *out.Name)
	require.NotNil(t, out.IsDirectory)
	assert.False(t, *out.IsDirectory)
	require.NotNil(t, out.Size)
	assert.EqualValues(t, 2048, *out.Size)
	require.NotNil(t, out.ModificationTime)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *out.ModificationTime)
	require.NotNil(t, out.MIMEType)
	assert.Equal(t, "application/pdf", *out.MIMEType)
}

// TestProject_NothingRequested verifies an empty want set projects an
// empty record, regardless of what the metadata holds.
func TestProject_NothingRequested(t *testing.T) {
	t.Parallel()

	out := provider.Project(sampleMetadata(), provider.FieldWants{})

	assert.Nil(t, out.Name)
	assert.Nil(t, out.IsDirectory)
	assert.Nil(t, out.Size)
	assert.Nil(t, out.ModificationTime)
	assert.Nil(t, out.MIMEType)
}

// TestProject_SubsetOnly verifies unrequested fields stay absent even
// when present in the metadata.
func TestProject_SubsetOnly(t *testing.T) {
	t.Parallel()

	out := provider.Project(sampleMetadata(), provider.FieldWants{Name: true, Size: true})

	assert.NotNil(t, out.Name)
	assert.NotNil(t, out.Size)
	assert.Nil(t, out.IsDirectory)
	assert.Nil(t, out.ModificationTime)
	assert.Nil(t, out.MIMEType)
}

// TestProject_EmptyMIMEType verifies a requested but absent MIME type
// projects nothing; directories routinely have none.
func TestProject_EmptyMIMEType(t *testing.T) {
	t.Parallel()

	md := remote.Metadata{Name: "folder", IsDirectory: true}
	out := provider.Project(md, provider.FieldWants{
		Name:        true,
		IsDirectory: true,
		MIMEType:    true,
	})

	require.NotNil(t, out.IsDirectory)
	assert.True(t, *out.IsDirectory)
	assert.Nil(t, out.MIMEType, "an empty MIME type must not be projected")
}

// TestProject_IndependentCopies verifies two projections of one metadata
// record never share pointers.
func TestProject_IndependentCopies(t *testing.T) {
	t.Parallel()

	md := sampleMetadata()
	all := provider.FieldWants{Name: true, Size: true}

	a := provider.Project(md, all)
	b := provider.Project(md, all)

	*a.Name = "mutated"
	*a.Size = 1

	assert.Equal(t, "report.pdf", *b.Name)
	assert.EqualValues(t, 2048, *b.Size)
}
