package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyBuilder    = "builder"
	KeyDocname    = "docname"
	KeyObject     = "object"
	KeyRole       = "role"
	KeyReference  = "reference"
	KeyCategory   = "category"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyProject    = "project"
	KeyURL        = "url"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Builder(name string) slog.Attr    { return slog.String(KeyBuilder, name) }
func Docname(d string) slog.Attr       { return slog.String(KeyDocname, d) }
func Object(name string) slog.Attr     { return slog.String(KeyObject, name) }
func Role(r string) slog.Attr          { return slog.String(KeyRole, r) }
func Reference(target string) slog.Attr { return slog.String(KeyReference, target) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Project(p string) slog.Attr       { return slog.String(KeyProject, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
