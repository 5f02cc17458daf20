package sqlstmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// ErrEmptyStatement is returned for blank input.
var ErrEmptyStatement = errors.New("empty statement")

var (
	reCreateDatabase = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:DATABASE|SCHEMA)\b`)
	reDropDatabase   = regexp.MustCompile(`(?i)^\s*DROP\s+(?:DATABASE|SCHEMA)\b`)
	reCreateTable    = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:TEMPORARY\s+)?TABLE\b`)
	reDropTable      = regexp.MustCompile(`(?i)^\s*DROP\s+(?:TEMPORARY\s+)?TABLE\b`)
	reTruncate       = regexp.MustCompile(`(?i)^\s*TRUNCATE\b`)
)

// Classify parses a single SQL statement into its kind set, target table,
// VALUES tuples and flattened WHERE clauses.
func Classify(raw string) (*Statement, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, ";")
	if raw == "" {
		return nil, ErrEmptyStatement
	}

	stmt := &Statement{Raw: raw, Kinds: previewKinds(raw)}

	// The feed is SQLite text: a backslash is literal, not an escape.
	tree, err := sqlparser.Parse(strings.ReplaceAll(raw, `\`, `\\`))
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	switch node := tree.(type) {
	case *sqlparser.Insert:
		stmt.Kinds = stmt.Kinds.Add(KindInsert)
		stmt.Table = node.Table.Name.String()
		if rows, ok := node.Rows.(sqlparser.Values); ok {
			stmt.Values = make([][]Token, 0, len(rows))
			for _, tuple := range rows {
				stmt.Values = append(stmt.Values, tokensOf(sqlparser.Exprs(tuple)))
			}
		}
	case *sqlparser.Update:
		stmt.Kinds = stmt.Kinds.Add(KindUpdate)
		stmt.Table = firstTable(node.TableExprs)
		if node.Where != nil {
			stmt.Where = flattenWhere(node.Where.Expr, nil)
		}
	case *sqlparser.Delete:
		stmt.Kinds = stmt.Kinds.Add(KindDelete)
		stmt.Table = firstTable(node.TableExprs)
		if node.Where != nil {
			stmt.Where = flattenWhere(node.Where.Expr, nil)
		}
	case *sqlparser.Select:
		stmt.Kinds = stmt.Kinds.Add(KindSelect)
		stmt.Table = firstTable(node.From)
	case *sqlparser.DDL:
		// CREATE carries its table in NewName, the other actions in Table.
		stmt.Table = node.Table.Name.String()
		if node.Action == sqlparser.CreateStr {
			stmt.Table = node.NewName.Name.String()
		}
		switch node.Action {
		case sqlparser.CreateStr:
			stmt.Kinds = stmt.Kinds.Add(KindCreateTable)
		case sqlparser.DropStr:
			stmt.Kinds = stmt.Kinds.Add(KindDropTable)
		case sqlparser.TruncateStr:
			stmt.Kinds = stmt.Kinds.Add(KindTruncate)
		}
	}

	return stmt, nil
}

// previewKinds applies the leading-keyword heuristic.
func previewKinds(sql string) KindSet {
	var kinds KindSet
	switch sqlparser.Preview(sql) {
	case sqlparser.StmtSelect:
		kinds = kinds.Add(KindSelect)
	case sqlparser.StmtInsert, sqlparser.StmtReplace:
		kinds = kinds.Add(KindInsert)
	case sqlparser.StmtUpdate:
		kinds = kinds.Add(KindUpdate)
	case sqlparser.StmtDelete:
		kinds = kinds.Add(KindDelete)
	case sqlparser.StmtDDL:
		switch {
		case reCreateDatabase.MatchString(sql):
			kinds = kinds.Add(KindCreateDatabase)
		case reDropDatabase.MatchString(sql):
			kinds = kinds.Add(KindDropDatabase)
		case reCreateTable.MatchString(sql):
			kinds = kinds.Add(KindCreateTable)
		case reDropTable.MatchString(sql):
			kinds = kinds.Add(KindDropTable)
		case reTruncate.MatchString(sql):
			kinds = kinds.Add(KindTruncate)
		}
	}
	return kinds
}

func firstTable(exprs sqlparser.TableExprs) string {
	for _, te := range exprs {
		aliased, ok := te.(*sqlparser.AliasedTableExpr)
		if !ok {
			continue
		}
		if name, ok := aliased.Expr.(sqlparser.TableName); ok {
			return name.Name.String()
		}
	}
	return ""
}

func flattenWhere(expr sqlparser.Expr, out []WhereClause) []WhereClause {
	switch e := expr.(type) {
	case *sqlparser.AndExpr:
		out = flattenWhere(e.Left, out)
		return flattenWhere(e.Right, out)
	case *sqlparser.ParenExpr:
		return flattenWhere(e.Expr, out)
	case *sqlparser.ComparisonExpr:
		clause := WhereClause{Operator: e.Operator}
		if col, ok := e.Left.(*sqlparser.ColName); ok {
			clause.Column = col.Name.String()
		}
		if tuple, ok := e.Right.(sqlparser.ValTuple); ok {
			for _, v := range tuple {
				clause.Values = append(clause.Values, []Token{tokenOf(v)})
			}
		} else {
			clause.Values = [][]Token{{tokenOf(e.Right)}}
		}
		return append(out, clause)
	default:
		// OR chains and other predicates keep their text so handlers can
		// report them; they never match a delete key.
		return append(out, WhereClause{
			Values: [][]Token{{{Kind: TokenOther, Text: sqlparser.String(expr)}}},
		})
	}
}

func tokensOf(exprs sqlparser.Exprs) []Token {
	tokens := make([]Token, 0, len(exprs))
	for _, e := range exprs {
		tokens = append(tokens, tokenOf(e))
	}
	return tokens
}

func tokenOf(expr sqlparser.Expr) Token {
	switch e := expr.(type) {
	case *sqlparser.SQLVal:
		switch e.Type {
		case sqlparser.StrVal:
			return Token{Kind: TokenString, Text: string(e.Val)}
		case sqlparser.IntVal, sqlparser.FloatVal:
			return Token{Kind: TokenNumber, Text: string(e.Val)}
		default:
			return Token{Kind: TokenOther, Text: string(e.Val)}
		}
	case *sqlparser.NullVal:
		return Token{Kind: TokenNull}
	case sqlparser.BoolVal:
		if e {
			return Token{Kind: TokenBool, Text: "true"}
		}
		return Token{Kind: TokenBool, Text: "false"}
	case *sqlparser.UnaryExpr:
		if inner, ok := e.Expr.(*sqlparser.SQLVal); ok && e.Operator == sqlparser.UMinusStr &&
			(inner.Type == sqlparser.IntVal || inner.Type == sqlparser.FloatVal) {
			return Token{Kind: TokenNumber, Text: "-" + string(inner.Val)}
		}
	case *sqlparser.ColName:
		return Token{Kind: TokenOther, Text: e.Name.String()}
	}
	return Token{Kind: TokenOther, Text: sqlparser.String(expr)}
}
