package httputil

import (
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
)

const multipartMemory = 8 << 20

// MaxFormBody bounds bodies of endpoints that take no file.
const MaxFormBody = 1 << 20

// Form is a request body read as flat fields plus uploaded files,
// whatever the content type (multipart, urlencoded or JSON).
type Form struct {
	values map[string]string
	files  map[string]*multipart.FileHeader
}

// ReadForm parses the body of r. maxBytes bounds the whole body; zero means no limit.
func ReadForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Form, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	f := &Form{
		values: make(map[string]string),
		files:  make(map[string]*multipart.FileHeader),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				f.values[key] = vals[0]
			}
		}
		for key, fhs := range r.MultipartForm.File {
			if len(fhs) > 0 {
				f.files[key] = fhs[0]
			}
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		for key, vals := range r.PostForm {
			if len(vals) > 0 {
				f.values[key] = vals[0]
			}
		}
	default:
		raw := map[string]interface{}{}
		if err := DecodeJSON(r, &raw); err != nil {
			return nil, err
		}
		for key, val := range raw {
			switch v := val.(type) {
			case nil:
			case string:
				f.values[key] = v
			case float64:
				f.values[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				f.values[key] = strconv.FormatBool(v)
			default:
				b, _ := json.Marshal(v)
				f.values[key] = string(b)
			}
		}
	}

	return f, nil
}

// Value returns the field and whether it was sent at all.
func (f *Form) Value(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *Form) File(key string) *multipart.FileHeader {
	return f.files[key]
}
