package federation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// DataSource is a validated backing file with its stable alias and the
// shape information the federation recorded while attaching it.
type DataSource struct {
	Path  string
	Alias string

	// Fingerprint is the place-table shape (column name:type list, in
	// declaration order) used to detect schema drift between sources.
	Fingerprint string

	// Tables records which optional tables this source provides.
	Tables map[string]bool
}

// Ref names one database to attach. An empty Alias derives one from
// the file name.
type Ref struct {
	Path  string
	Alias string
}

// reservedAliases are the schema names SQLite claims for itself; an
// attached database may not reuse them.
var reservedAliases = map[string]bool{"main": true, "temp": true}

// resolveSources validates refs and assigns each a stable alias.
// Derived aliases deduplicate with a numeric suffix; explicit aliases
// must be unique and unreserved. Missing or unreadable paths fail with
// SourceNotFoundError before anything is opened.
func resolveSources(refs []Ref) ([]DataSource, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("no sources given")
	}

	sources := make([]DataSource, 0, len(refs))
	used := make(map[string]bool)
	for _, ref := range refs {
		info, err := os.Stat(ref.Path)
		if err != nil {
			return nil, &wof.SourceNotFoundError{Path: ref.Path, Err: err}
		}
		if info.IsDir() {
			return nil, &wof.SourceNotFoundError{Path: ref.Path, Err: fmt.Errorf("is a directory")}
		}

		alias := ref.Alias
		if alias == "" {
			alias = aliasForPath(ref.Path)
			base := alias
			for n := 1; used[alias]; n++ {
				alias = fmt.Sprintf("%s_%d", base, n)
			}
		} else {
			if reservedAliases[alias] {
				return nil, fmt.Errorf("source alias %q is reserved", alias)
			}
			if used[alias] {
				return nil, fmt.Errorf("duplicate source alias %q", alias)
			}
		}
		used[alias] = true

		sources = append(sources, DataSource{
			Path:   ref.Path,
			Alias:  alias,
			Tables: make(map[string]bool),
		})
	}
	return sources, nil
}

// aliasForPath derives a SQL-identifier-safe alias from a file name:
// "whosonfirst-data-admin-bb-latest.db" -> "whosonfirst_data_admin_bb_latest".
func aliasForPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune('_')
		}
	}
	alias := strings.Trim(b.String(), "_")
	if alias == "" || !unicode.IsLetter(rune(alias[0])) {
		alias = "src_" + alias
	}
	if reservedAliases[alias] {
		alias = "src_" + alias
	}
	return alias
}
