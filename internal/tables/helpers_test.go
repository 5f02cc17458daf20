package tables

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func insertSQL(table string, fields ...string) string {
	q := make([]string, len(fields))
	for i, f := range fields {
		q[i] = quote(f)
	}
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(q, ","))
}

func stopInsert(code, routeNo string) string {
	return insertSQL(TableStopInfo, code, routeNo, "Eng", "中", "中", "Stop", "站", "22.3", "114.1")
}

func routeMasterInsert(routeNo string) string {
	return insertSQL(TableRouteMaster, routeNo, "x", "4.9", "12.5", "50", "1")
}

func routeStopRow(routeNo, bound, seq string) []string {
	row := make([]string, routeStopFields)
	row[0], row[1], row[2], row[3], row[4] = routeNo, bound, seq, "K", "0"
	for i := 5; i < routeStopFields; i++ {
		row[i] = fmt.Sprintf("f%d", i)
	}
	return row
}

func fakeStopRow(f *gofakeit.Faker) []string {
	return []string{
		strings.ToUpper(f.Letter()+f.Letter()) + f.Numerify("##-S-####-#"),
		f.Numerify("##"),
		f.Street(),
		f.Word(),
		f.Word(),
		f.Street(),
		f.Word(),
		fmt.Sprintf("%.6f", f.Float64Range(22.2, 22.5)),
		fmt.Sprintf("%.6f", f.Float64Range(113.9, 114.3)),
	}
}
