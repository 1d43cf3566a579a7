package filepond

import "github.com/gin-gonic/gin"

// FieldValueFromForm reads name from a urlencoded or multipart form.
// "name[]" or a repeated "name" yields a multiple value.
func FieldValueFromForm(c *gin.Context, name string) FieldValue {
	if ids, ok := c.GetPostFormArray(name + "[]"); ok {
		return Multiple(ids...)
	}
	ids, ok := c.GetPostFormArray(name)
	if !ok {
		return Empty()
	}
	if len(ids) > 1 {
		return Multiple(ids...)
	}
	return Single(ids[0])
}

// FieldFromForm binds name from the request form.
func (fp *Filepond) FieldFromForm(c *gin.Context, name string, opts ...FieldOption) (*Field, error) {
	return fp.Field(c.Request.Context(), name, FieldValueFromForm(c, name), opts...)
}
