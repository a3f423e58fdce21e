package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const noDataLabel = "No data"

type CountPoint struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

// CountSeries is a category -> count aggregate that keeps the order in which
// categories arrived. It decodes from a JSON object ({"2024-01": 3}) or from
// a list of rows ([{"month": "2024-01", "count": 3}]). A repeated category
// overwrites the earlier value in place.
type CountSeries []CountPoint

func (s *CountSeries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	var out CountSeries
	index := make(map[string]int)
	set := func(label string, count float64) {
		if i, ok := index[label]; ok {
			out[i].Count = count
			return
		}
		index[label] = len(out)
		out = append(out, CountPoint{Label: label, Count: count})
	}

	switch data[0] {
	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("count series: unexpected key %v", tok)
			}
			var count float64
			if err := dec.Decode(&count); err != nil {
				return fmt.Errorf("count series %q: %w", key, err)
			}
			set(key, count)
		}
	case '[':
		var rows []struct {
			Month string   `json:"month"`
			Type  string   `json:"type"`
			Label string   `json:"label"`
			Count *float64 `json:"count"`
			Value *float64 `json:"value"`
		}
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, row := range rows {
			label := firstNonEmpty(row.Month, row.Type, row.Label)
			var count float64
			switch {
			case row.Count != nil:
				count = *row.Count
			case row.Value != nil:
				count = *row.Value
			}
			set(label, count)
		}
	default:
		return fmt.Errorf("count series: expected object or array, got %q", data[0])
	}

	*s = out
	return nil
}

// ActiveExpired holds the active/expired point pair. It decodes from
// {"active": a, "expired": e} or from [a, e].
type ActiveExpired struct {
	Active  float64 `json:"active"`
	Expired float64 `json:"expired"`
}

func (p *ActiveExpired) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ActiveExpired{}
		return nil
	}
	if data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		*p = ActiveExpired{}
		if len(pair) > 0 {
			p.Active = pair[0]
		}
		if len(pair) > 1 {
			p.Expired = pair[1]
		}
		return nil
	}
	var obj struct {
		Active  float64 `json:"active"`
		Expired float64 `json:"expired"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = ActiveExpired(obj)
	return nil
}

// ChartConfig is a Chart.js configuration object plus the panel metadata the
// dashboard page needs to place it.
type ChartConfig struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BorderWidth     int       `json:"borderWidth"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	Cutout          string    `json:"cutout,omitempty"`
}

var (
	categoryPalette    = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF"}
	timelineColor      = "#36A2EB"
	activeExpiredColor = []string{"#FF4444", "#888888"}
)

// TimelineChart projects a month -> count series into a bar chart with the
// categories sorted lexicographically ("YYYY-MM" keys sort chronologically).
func TimelineChart(id, title, datasetLabel string, series CountSeries) ChartConfig {
	points := make(CountSeries, len(series))
	copy(points, series)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Label < points[j].Label })

	labels, values := splitSeries(points)
	return ChartConfig{
		ID:    id,
		Title: title,
		Type:  "bar",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           datasetLabel,
				Data:            values,
				BorderWidth:     1,
				BackgroundColor: []string{timelineColor},
			}},
		},
		Options: barOptions(),
	}
}

// DistributionChart projects a category -> count series into a pie chart,
// keeping the source order.
func DistributionChart(id, title string, series CountSeries) ChartConfig {
	labels, values := splitSeries(series)
	return ChartConfig{
		ID:    id,
		Title: title,
		Type:  "pie",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           "By Type",
				Data:            values,
				BorderWidth:     1,
				BackgroundColor: categoryPalette,
			}},
		},
		Options: legendOptions(),
	}
}

// ActiveExpiredChart projects the active/expired pair into a doughnut. A nil
// pair renders as zeros.
func ActiveExpiredChart(points *ActiveExpired) ChartConfig {
	var active, expired float64
	if points != nil {
		active, expired = points.Active, points.Expired
	}
	return ChartConfig{
		ID:    "active_expired",
		Title: "Active vs Expired Penalty Points",
		Type:  "doughnut",
		Data: ChartData{
			Labels: []string{"Active Points", "Expired Points"},
			Datasets: []ChartDataset{{
				Label:           "Penalty Points",
				Data:            []float64{active, expired},
				BorderWidth:     1,
				BackgroundColor: activeExpiredColor,
				Cutout:          "65%",
			}},
		},
		Options: legendOptions(),
	}
}

func splitSeries(series CountSeries) ([]string, []float64) {
	if len(series) == 0 {
		return []string{noDataLabel}, []float64{0}
	}
	labels := make([]string, 0, len(series))
	values := make([]float64, 0, len(series))
	for _, p := range series {
		labels = append(labels, p.Label)
		values = append(values, p.Count)
	}
	return labels, values
}

func legendOptions() map[string]any {
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"plugins": map[string]any{
			"legend": map[string]any{
				"display":  true,
				"position": "top",
				"labels":   map[string]any{"color": "#cbd5e1", "boxWidth": 12, "padding": 14},
			},
			"tooltip": map[string]any{"enabled": true},
		},
	}
}

func barOptions() map[string]any {
	opts := legendOptions()
	opts["scales"] = map[string]any{
		"x": map[string]any{
			"grid":  map[string]any{"display": false},
			"ticks": map[string]any{"color": "#cbd5e1"},
		},
		"y": map[string]any{
			"beginAtZero": true,
			"grid":        map[string]any{"color": "rgba(255,255,255,0.10)"},
			"ticks":       map[string]any{"stepSize": 1, "color": "#cbd5e1"},
		},
	}
	return opts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
