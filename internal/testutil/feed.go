// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"html"
	"strings"
)

// FeedStatements is a small POI feed covering every handled table, an
// unmodeled table, a route-stop delete and a special-note delete.
var FeedStatements = []string{
	"INSERT INTO kmb_RS_stopinfo VALUES ('TS03-N-1050-0','1','Tsim Sha Tsui Star Ferry','尖沙咀碼頭','尖沙咀码头','Star Ferry','天星碼頭','22.29411','114.16869')",
	"INSERT INTO kmb_RS_stopinfo VALUES ('HO06-S-1000-0','1','Hung Hom Station','紅磡站','红磡站','Hung Hom','紅磡','22.30284','114.18153')",
	"INSERT INTO kmb_routemaster VALUES ('1','x','4.9','9.2','45','1')",
	"INSERT INTO kmb_routemaster VALUES ('N21','x','11.0','24.5','60','1')",
	"INSERT INTO kmb_routestopfile VALUES ('1','1','1','K','0','4.9','Salisbury Road','Tsim Sha Tsui','','','梳士巴利道','尖沙咀','','','梳士巴利道','尖沙咀','','','TS03-N-1050-0','Star Ferry','天星碼頭','天星码头','YTM')",
	"INSERT INTO kmb_routestopfile VALUES ('1','1','2','K','0','4.9','Chatham Road','Hung Hom','','','漆咸道','紅磡','','','漆咸道','红磡','','','HO06-S-1000-0','Hung Hom','紅磡','红磡','YTM')",
	"INSERT INTO kmb_specialnote VALUES ('TS03-N-1050-0','Stop relocated','巴士站已遷移')",
	"INSERT INTO kmb_businfo VALUES ('1','ignored')",
	"DELETE FROM kmb_routestopfile WHERE route_no = '1' AND bound = '1' AND stop_seq = '2'",
	"DELETE FROM kmb_specialnote WHERE route = 'NOPE'",
}

// FeedPlist renders statements as a POI feed document.
func FeedPlist(statements []string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString("<plist version=\"1.0\">\n<array>\n")
	for _, s := range statements {
		fmt.Fprintf(&b, "\t<string>%s</string>\n", html.EscapeString(s))
	}
	b.WriteString("</array>\n</plist>\n")
	return []byte(b.String())
}
