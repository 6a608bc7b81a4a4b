// Package querysql compiles filter specifications into parameterized
// SQL against the federation's unified views.
//
// Every compiled query carries a deterministic ORDER BY (explicit sort
// field first, primary key ascending as tiebreak) so paged and chunked
// reads never skip or duplicate rows. Values are always bound as
// parameters, never interpolated into SQL text.
package querysql
