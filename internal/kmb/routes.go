package kmb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type routeList struct {
	RouteNumbers string `json:"r_no"`
}

// Routes returns the route numbers that currently publish arrival estimates.
func (c *Client) Routes(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.cfg.DataBaseURL, "/GetData.ashx?type=ETA_R")
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}

	var lists []routeList
	if err := json.Unmarshal(body, &lists); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	if len(lists) == 0 {
		return nil, errors.New("decode routes: empty response")
	}

	var routes []string
	for _, r := range strings.Split(lists[0].RouteNumbers, ",") {
		if r = strings.TrimSpace(r); r != "" {
			routes = append(routes, r)
		}
	}
	return routes, nil
}
