package positions

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Record is one simulated end-of-day position.
type Record struct {
	Date         time.Time
	CurrencyPair string
	PositionSize float64
	Direction    Direction
	Desk         string
	GeneratedAt  time.Time
}

type recordJSON struct {
	Date         string    `json:"date"`
	CurrencyPair string    `json:"currency_pair"`
	PositionSize float64   `json:"position_size"`
	Direction    Direction `json:"direction"`
	Desk         string    `json:"desk"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Date:         r.Date.Format(time.DateOnly),
		CurrencyPair: r.CurrencyPair,
		PositionSize: r.PositionSize,
		Direction:    r.Direction,
		Desk:         r.Desk,
		GeneratedAt:  r.GeneratedAt,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(time.DateOnly, raw.Date)
	if err != nil {
		return err
	}
	*r = Record{
		Date:         date,
		CurrencyPair: raw.CurrencyPair,
		PositionSize: raw.PositionSize,
		Direction:    raw.Direction,
		Desk:         raw.Desk,
		GeneratedAt:  raw.GeneratedAt,
	}
	return nil
}

// EncodeJSONLines writes one JSON object per line.
func EncodeJSONLines(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// FileName is the landing file name for a day's positions.
func FileName(date time.Time) string {
	return date.Format(time.DateOnly) + "_positions.json"
}

// DirectionSummary aggregates the records of one direction.
type DirectionSummary struct {
	Direction Direction
	Count     int
	Sum       float64
	Mean      float64
}

// Summarize groups records by direction, in Directions order, skipping
// directions with no records.
func Summarize(records []Record) []DirectionSummary {
	byDir := make(map[Direction]*DirectionSummary, len(Directions))
	for _, r := range records {
		s, ok := byDir[r.Direction]
		if !ok {
			s = &DirectionSummary{Direction: r.Direction}
			byDir[r.Direction] = s
		}
		s.Count++
		s.Sum += r.PositionSize
	}

	out := make([]DirectionSummary, 0, len(byDir))
	for _, d := range Directions {
		s, ok := byDir[d]
		if !ok {
			continue
		}
		s.Sum = math.Round(s.Sum*100) / 100
		s.Mean = math.Round(s.Sum/float64(s.Count)*100) / 100
		out = append(out, *s)
	}
	return out
}
