package content_type

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	motmedelErrors "github.com/Motmedel/http_response/pkg/errors"
)

var ErrNoExtension = errors.New("no extension")

// Table maps a lowercase file extension to a media type.
type Table map[string]string

var defaultTable = Table{
	"avi":  "video/x-msvideo",
	"css":  "text/css;charset=UTF-8",
	"csv":  "text/csv;charset=UTF-8",
	"dcm":  "application/dicom",
	"gif":  "image/gif",
	"htm":  "text/html;charset=UTF-8",
	"html": "text/html;charset=UTF-8",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"js":   "text/javascript;charset=UTF-8",
	"md":   "application/unknown",
	"mp4":  "video/mp4",
	"mpeg": "video/mpg",
	"mpg":  "video/mpg",
	"oga":  "audio/oga",
	"ogg":  "video/ogg",
	"ogv":  "video/ogg",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"swf":  "application/x-shockwave-flash",
	"txt":  "text/plain;charset=UTF-8",
	"wav":  "audio/wav",
	"xml":  "text/xml;charset=UTF-8",
	"zip":  "application/zip",
}

// DefaultTable returns a copy of the built-in table; the built-in table itself is never handed out.
func DefaultTable() Table {
	return maps.Clone(defaultTable)
}

// Lookup returns the media type for extension, or "" if the extension is unknown. A nil table means the
// built-in one.
func (table Table) Lookup(extension string) string {
	if table == nil {
		table = defaultTable
	}
	return table[strings.ToLower(strings.TrimPrefix(extension, "."))]
}

func Lookup(extension string) string {
	return defaultTable.Lookup(extension)
}

// ExtensionFromFileName returns the text after the last '.' in the base name of path.
func ExtensionFromFileName(path string) (string, error) {
	name := filepath.Base(path)

	index := strings.LastIndexByte(name, '.')
	if index == -1 {
		return "", motmedelErrors.NewWithTrace(fmt.Errorf("%w: %q", ErrNoExtension, name), path)
	}

	return name[index+1:], nil
}
