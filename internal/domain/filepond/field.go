package filepond

// Field is one form field bound to its staged uploads for the duration of a
// request. It is not safe for concurrent use.
type Field struct {
	fp         *Filepond
	name       string
	value      FieldValue
	softDelete bool
	uploads    []*Upload
}

func (f *Field) Name() string { return f.name }

func (f *Field) Value() FieldValue { return f.value }

// IsMultiple reports whether the field was submitted as a list.
func (f *Field) IsMultiple() bool { return f.value.IsMultiple() }

// IsEmpty reports whether no submitted id resolved to an upload.
func (f *Field) IsEmpty() bool { return len(f.uploads) == 0 }

func (f *Field) SoftDeletes() bool { return f.softDelete }

// GetModel returns the bound records in submission order, or nil.
func (f *Field) GetModel() []*Upload {
	if f.IsEmpty() {
		return nil
	}
	return append([]*Upload(nil), f.uploads...)
}
