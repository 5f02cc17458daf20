package sqlstmt

import "strings"

// Kind is a statement category reported by the classifier.
type Kind uint16

const (
	KindInsert Kind = 1 << iota
	KindUpdate
	KindDelete
	KindSelect
	KindTruncate
	KindCreateTable
	KindCreateDatabase
	KindDropTable
	KindDropDatabase
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindInsert, "INSERT"},
	{KindUpdate, "UPDATE"},
	{KindDelete, "DELETE"},
	{KindSelect, "SELECT"},
	{KindTruncate, "TRUNCATE"},
	{KindCreateTable, "CREATE_TABLE"},
	{KindCreateDatabase, "CREATE_DATABASE"},
	{KindDropTable, "DROP_TABLE"},
	{KindDropDatabase, "DROP_DATABASE"},
}

func (k Kind) String() string {
	for _, kn := range kindNames {
		if kn.kind == k {
			return kn.name
		}
	}
	return "UNKNOWN"
}

// KindSet holds every kind a statement matched. The keyword heuristic and
// the parsed statement type are unioned, so more than one bit may be set.
type KindSet uint16

// Has reports whether k is a member of the set.
func (s KindSet) Has(k Kind) bool {
	return s&KindSet(k) != 0
}

// Add returns the set with k included.
func (s KindSet) Add(k Kind) KindSet {
	return s | KindSet(k)
}

// Empty reports whether no kind matched.
func (s KindSet) Empty() bool {
	return s == 0
}

// Names lists the member kinds in declaration order.
func (s KindSet) Names() []string {
	var names []string
	for _, kn := range kindNames {
		if s.Has(kn.kind) {
			names = append(names, kn.name)
		}
	}
	return names
}

func (s KindSet) String() string {
	if s.Empty() {
		return "UNKNOWN"
	}
	return strings.Join(s.Names(), "|")
}

// TokenKind is the lexical type of a value token.
type TokenKind string

const (
	TokenString TokenKind = "string"
	TokenNumber TokenKind = "number"
	TokenNull   TokenKind = "null"
	TokenBool   TokenKind = "bool"
	TokenOther  TokenKind = "other"
)

// Token is one literal from a VALUES tuple or WHERE comparison.
// Text holds the literal without quotes; NULL has empty Text.
type Token struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// WhereClause is one comparison from a flattened AND chain.
type WhereClause struct {
	Column   string    `json:"column"`
	Operator string    `json:"operator"`
	Values   [][]Token `json:"values"`
}

// First returns the first token of the first value tuple.
func (w WhereClause) First() (Token, bool) {
	if len(w.Values) == 0 || len(w.Values[0]) == 0 {
		return Token{}, false
	}
	return w.Values[0][0], true
}

// Statement is the classifier output for one raw SQL string.
type Statement struct {
	Raw    string        `json:"raw"`
	Table  string        `json:"table"`
	Kinds  KindSet       `json:"-"`
	Values [][]Token     `json:"values,omitempty"`
	Where  []WhereClause `json:"where,omitempty"`
}

// FirstRow returns the first VALUES tuple, or nil when there is none.
func (s *Statement) FirstRow() []Token {
	if len(s.Values) == 0 {
		return nil
	}
	return s.Values[0]
}
