package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	ext  string
	size int64
	mime string
}

func (f fakeFile) Extension() string { return f.ext }
func (f fakeFile) Size() int64       { return f.size }
func (f fakeFile) MimeType() string  { return f.mime }

func pdf(kb int64) File {
	return fakeFile{ext: "pdf", size: kb * 1024, mime: "application/pdf"}
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr
}

func TestParseRules(t *testing.T) {
	assert.Equal(t, []string{"required", "file", "max:5000"}, ParseRules("required|file", " max:5000 "))
	assert.Nil(t, ParseRules("", "|"))
}

func TestEngine_RequiredOnMissingValue(t *testing.T) {
	e := NewEngine()

	err := e.Validate(map[string]any{"avatar": nil}, Rules("avatar", "required|file"), nil, nil)

	verr := validationError(t, err)
	assert.Equal(t, []string{"avatar"}, verr.Keys())
	assert.Equal(t, []string{"The avatar field is required."}, verr.Errors["avatar"])
}

func TestEngine_OptionalRulesSkipMissingValue(t *testing.T) {
	e := NewEngine()
	err := e.Validate(map[string]any{"avatar": nil}, Rules("avatar", "file|max:10|mimes:png"), nil, nil)
	assert.NoError(t, err)
}

func TestEngine_SingleFileRules(t *testing.T) {
	e := NewEngine()

	assert.NoError(t, e.Validate(map[string]any{"doc": pdf(100)}, Rules("doc", "required|file|max:5000|mimes:pdf,docx"), nil, nil))

	err := e.Validate(map[string]any{"doc": pdf(6000)}, Rules("doc", "file|max:5000"), nil, nil)
	verr := validationError(t, err)
	assert.Equal(t, "The doc must not be greater than 5000 kilobytes.", verr.First("doc"))

	err = e.Validate(map[string]any{"doc": pdf(1)}, Rules("doc", "mimes:png,jpg"), nil, nil)
	verr = validationError(t, err)
	assert.Equal(t, "The doc must be a file of type: png, jpg.", verr.First("doc"))
}

func TestEngine_JpegMatchesJpg(t *testing.T) {
	e := NewEngine()
	photo := fakeFile{ext: "JPEG", size: 10, mime: "image/jpeg"}
	assert.NoError(t, e.Validate(map[string]any{"photo": photo}, Rules("photo", "mimes:jpg"), nil, nil))
}

func TestEngine_MimeTypes(t *testing.T) {
	e := NewEngine()
	photo := fakeFile{ext: "bin", size: 10, mime: "image/png"}

	assert.NoError(t, e.Validate(map[string]any{"photo": photo}, Rules("photo", "mimetypes:image/*"), nil, nil))
	assert.NoError(t, e.Validate(map[string]any{"photo": photo}, Rules("photo", "mimetypes:image/jpeg,image/png"), nil, nil))

	err := e.Validate(map[string]any{"photo": photo}, Rules("photo", "mimetypes:application/pdf"), nil, nil)
	validationError(t, err)
}

func TestEngine_ArrayAndWildcard(t *testing.T) {
	e := NewEngine()
	values := map[string]any{"gallery": []File{pdf(1), pdf(9000), pdf(2)}}

	rules := Rules("gallery", "array|max:2").Add("gallery.*", "file|max:5000")
	err := e.Validate(values, rules, nil, nil)

	verr := validationError(t, err)
	assert.Equal(t, []string{"gallery", "gallery.1"}, verr.Keys())
	assert.Equal(t, "The gallery must not have more than 2 items.", verr.First("gallery"))
	assert.Equal(t, "The gallery.1 must not be greater than 5000 kilobytes.", verr.First("gallery.1"))
}

func TestEngine_FileRuleRejectsArray(t *testing.T) {
	e := NewEngine()
	err := e.Validate(map[string]any{"gallery": []File{pdf(1)}}, Rules("gallery", "file"), nil, nil)
	verr := validationError(t, err)
	assert.Equal(t, "The gallery must be a file.", verr.First("gallery"))
}

func TestEngine_NestedKeyOnBoundFieldIsMissing(t *testing.T) {
	e := NewEngine()
	err := e.Validate(map[string]any{"avatar": pdf(1)}, Rules("avatar.required", "required"), nil, nil)
	verr := validationError(t, err)
	assert.Equal(t, []string{"avatar.required"}, verr.Keys())
}

func TestEngine_WildcardOnSingleFileHasNoTargets(t *testing.T) {
	e := NewEngine()
	exe := fakeFile{ext: "exe", size: 10, mime: "application/x-msdownload"}

	err := e.Validate(map[string]any{"avatar": exe}, Rules("avatar.*", "required|mimes:png"), nil, nil)
	assert.NoError(t, err)

	err = e.Validate(map[string]any{"avatar": nil}, Rules("avatar.*", "required"), nil, nil)
	assert.NoError(t, err)
}

func TestEngine_BailStopsAtFirstFailure(t *testing.T) {
	e := NewEngine()
	exe := fakeFile{ext: "exe", size: 9000 * 1024, mime: "application/x-msdownload"}

	err := e.Validate(map[string]any{"avatar": exe}, Rules("avatar", "bail|mimes:png|max:10"), nil, nil)
	verr := validationError(t, err)
	assert.Equal(t, []string{"The avatar must be a file of type: png."}, verr.Errors["avatar"])

	err = e.Validate(map[string]any{"avatar": exe}, Rules("avatar", "mimes:png|max:10"), nil, nil)
	assert.Len(t, validationError(t, err).Errors["avatar"], 2)
}

func TestEngine_BailAppliesPerTarget(t *testing.T) {
	e := NewEngine()
	big := fakeFile{ext: "exe", size: 9000 * 1024, mime: "application/x-msdownload"}
	values := map[string]any{"gallery": []File{big, pdf(1), big}}

	err := e.Validate(values, Rules("gallery.*", "bail|mimes:pdf|max:10"), nil, nil)

	verr := validationError(t, err)
	assert.Equal(t, []string{"gallery.0", "gallery.2"}, verr.Keys())
	assert.Len(t, verr.Errors["gallery.0"], 1)
	assert.Len(t, verr.Errors["gallery.2"], 1)
}

func TestEngine_MessageAndAttributeOverrides(t *testing.T) {
	e := NewEngine()

	err := e.Validate(
		map[string]any{"cv_file": nil},
		Rules("cv_file", "required"),
		map[string]string{"cv_file.required": "Please attach :attribute."},
		map[string]string{"cv_file": "your CV"},
	)
	verr := validationError(t, err)
	assert.Equal(t, "Please attach your CV.", verr.First("cv_file"))

	err = e.Validate(map[string]any{"cv_file": nil}, Rules("cv_file", "required"), nil, nil)
	assert.Equal(t, "The cv file field is required.", validationError(t, err).First("cv_file"))
}

func TestEngine_UnsupportedRuleAndBadParam(t *testing.T) {
	e := NewEngine()

	err := e.Validate(map[string]any{"doc": pdf(1)}, Rules("doc", "dimensions:min_width=100"), nil, nil)
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))

	err = e.Validate(map[string]any{"doc": pdf(1)}, Rules("doc", "max:lots"), nil, nil)
	require.Error(t, err)
	assert.False(t, errors.As(err, &verr))
}

func TestValidationError_Message(t *testing.T) {
	verr := &ValidationError{}
	verr.add("a", "The a field is required.")
	assert.Equal(t, "The a field is required.", verr.Error())

	verr.add("b", "The b must be a file.")
	verr.add("b", "The b must be an array.")
	assert.Equal(t, "The a field is required (and 2 more errors)", verr.Error())
}
