package hh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Area is a region that can be used as a task's area code.
type Area struct {
	ID   string
	Name string
}

type area struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name"`
	Areas    []area  `json:"areas"`
}

// FindAreas walks the hh.ru area tree and returns the areas whose name contains query.
func (c *Client) FindAreas(ctx context.Context, query string) ([]Area, error) {

	body, err := c.sendRequest(ctx, "areas", c.baseURL+"/areas")
	if err != nil {
		return nil, err
	}

	var areas []area
	if err = json.NewDecoder(bytes.NewReader(body)).Decode(&areas); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var found []Area

	var collectAreas func(areas []area)
	collectAreas = func(areas []area) {
		for _, a := range areas {
			if strings.Contains(strings.ToLower(a.Name), query) {
				found = append(found, Area{ID: a.ID, Name: a.Name})
			}
			collectAreas(a.Areas)
		}
	}
	collectAreas(areas)
	return found, nil
}
