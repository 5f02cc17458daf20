package tables

// StopRecord is one row of kmb_RS_stopinfo, keyed by stop code.
// Coordinates stay as feed text; numeric coercion is left to consumers.
type StopRecord struct {
	StopCode    string `json:"stop_code"`
	RouteNo     string `json:"route_no"`
	EngLoc      string `json:"eng_loc"`
	ChiLoc      string `json:"chi_loc"`
	CnLoc       string `json:"cn_loc"`
	StopName    string `json:"stop_name"`
	StopNameChi string `json:"stop_name_chi"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`
}

// NoteRecord is one row of kmb_specialnote.
type NoteRecord struct {
	StopCode string `json:"stop_code"`
	EN       string `json:"en"`
	TC       string `json:"tc"`
}

// RouteRecord is one row of kmb_routemaster, keyed by route number.
// Prefix and Suffix are nil when the boundary character is a digit.
type RouteRecord struct {
	RouteNo  string  `json:"route_no"`
	Cost     string  `json:"cost"`
	LengthKM string  `json:"length_km"`
	TimeMins string  `json:"time_mins"`
	Type     string  `json:"type"`
	Prefix   *string `json:"prefix"`
	Suffix   *string `json:"suffix"`
}

// RouteStopRecord is one row of kmb_routestopfile. The feed carries an
// always-zero column after Area that is not stored.
type RouteStopRecord struct {
	RouteNo    string `json:"route_no"`
	Bound      string `json:"bound"`
	StopSeq    string `json:"stop_seq"`
	Area       string `json:"area"`
	Price      string `json:"price"`
	ENRoad     string `json:"en_road"`
	ENDistrict string `json:"en_district"`
	ENLampost  string `json:"en_lampost"`
	ENLandmark string `json:"en_landmark"`
	TCRoad     string `json:"tc_road"`
	TCDistrict string `json:"tc_district"`
	TCLampost  string `json:"tc_lampost"`
	TCLandmark string `json:"tc_landmark"`
	SCRoad     string `json:"sc_road"`
	SCDistrict string `json:"sc_district"`
	SCLampost  string `json:"sc_lampost"`
	SCLandmark string `json:"sc_landmark"`
	StopID     string `json:"stop_id"`
	ENStopName string `json:"en_stop_name"`
	TCStopName string `json:"tc_stop_name"`
	SCStopName string `json:"sc_stop_name"`
	District   string `json:"district"`
}

// Key returns the composite (route_no, bound, stop_seq) identity.
func (r RouteStopRecord) Key() RouteStopKey {
	return RouteStopKey{RouteNo: r.RouteNo, Bound: r.Bound, StopSeq: r.StopSeq}
}

// RouteStopKey identifies a route-stop row for deletion.
type RouteStopKey struct {
	RouteNo string `json:"route_no"`
	Bound   string `json:"bound"`
	StopSeq string `json:"stop_seq"`
}

// AreaRecord is reserved: the kmb_areafile row shape is not known yet.
type AreaRecord map[string]string
