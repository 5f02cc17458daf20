package tables

import (
	"strings"

	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/sqlstmt"
)

// Kind enumerates the feed tables the router knows about.
type Kind int

const (
	// KindUnhandled covers every table without a record model, including
	// kmb_routefreqfile, kmb_routeboundmaster, kmb_businfo and
	// kmb_areasearchfile. Statements for it are skipped.
	KindUnhandled Kind = iota
	KindStopInfo
	KindSpecialNote
	KindRouteMaster
	KindRouteStopFile
	KindAreaFile
)

// Feed table names.
const (
	TableStopInfo      = "kmb_RS_stopinfo"
	TableSpecialNote   = "kmb_specialnote"
	TableRouteMaster   = "kmb_routemaster"
	TableRouteStopFile = "kmb_routestopfile"
	TableAreaFile      = "kmb_areafile"
)

var tableKinds = map[string]Kind{
	strings.ToLower(TableStopInfo):      KindStopInfo,
	strings.ToLower(TableSpecialNote):   KindSpecialNote,
	strings.ToLower(TableRouteMaster):   KindRouteMaster,
	strings.ToLower(TableRouteStopFile): KindRouteStopFile,
	strings.ToLower(TableAreaFile):      KindAreaFile,
}

// KindOf maps a table name to its kind. Lookup ignores case.
func KindOf(table string) Kind {
	return tableKinds[strings.ToLower(table)]
}

func (k Kind) String() string {
	switch k {
	case KindStopInfo:
		return TableStopInfo
	case KindSpecialNote:
		return TableSpecialNote
	case KindRouteMaster:
		return TableRouteMaster
	case KindRouteStopFile:
		return TableRouteStopFile
	case KindAreaFile:
		return TableAreaFile
	default:
		return "unhandled"
	}
}

// Reporter receives statements surfaced for manual inspection.
type Reporter interface {
	Report(d diag.Diagnostic)
}

// handler applies one statement to the table it owns.
type handler interface {
	apply(stmt *sqlstmt.Statement, in *inspection)
}

// inspection carries the statement position so handlers can flag it.
type inspection struct {
	index int
	table string
	rep   Reporter
}

func (in *inspection) flag(t diag.Type, stmt *sqlstmt.Statement, msg string, detail map[string]string) {
	in.rep.Report(diag.Diagnostic{
		Type:      t,
		Severity:  diag.DefaultSeverity(t),
		Table:     in.table,
		Index:     in.index,
		Statement: stmt.Raw,
		Message:   msg,
		Detail:    detail,
	})
}

// Router dispatches classified statements to the handler registered for
// their target table.
type Router struct {
	handlers map[Kind]handler
}

// NewRouter wires one handler per known table of store.
func NewRouter(store *Store, opts Options) *Router {
	return &Router{
		handlers: map[Kind]handler{
			KindStopInfo:      &stopInfoHandler{table: store.StopInfo},
			KindSpecialNote:   &specialNoteHandler{table: store.SpecialNote},
			KindRouteMaster:   &routeMasterHandler{table: store.RouteMaster},
			KindRouteStopFile: &routeStopHandler{table: &store.RouteStopFile, applyDeletes: opts.ApplyRouteStopDeletes},
			KindAreaFile:      areaFileHandler{},
		},
	}
}

// Route applies stmt and reports whether a handler accepted it.
// Unknown tables return false without touching the store.
func (r *Router) Route(index int, stmt *sqlstmt.Statement, rep Reporter) bool {
	kind := KindOf(stmt.Table)
	h, ok := r.handlers[kind]
	if !ok {
		return false
	}
	h.apply(stmt, &inspection{index: index, table: kind.String(), rep: rep})
	return true
}
