package models

import (
	"fmt"
	"time"
)

// UpdatableFields lists the pick fields a UI edit is allowed to touch.
// Anything outside this whitelist is rejected before it reaches the store.
var UpdatableFields = map[string]bool{
	"result":         true,
	"ats_result":     true,
	"ou_result":      true,
	"confidence":     true,
	"moneyline_pick": true,
	"spread_pick":    true,
	"total_pick":     true,
	"home_score":     true,
	"away_score":     true,
	"moneyline_edge": true,
	"spread_edge":    true,
	"total_edge":     true,
}

// resultFields are the fields constrained to the MarketResult enum
var resultFields = map[string]bool{
	"result":     true,
	"ats_result": true,
	"ou_result":  true,
}

// IsResultField reports whether the named field holds a MarketResult value
func IsResultField(name string) bool {
	return resultFields[name]
}

// ApplyFields applies a whitelisted field payload to the pick. The whole
// payload is validated before anything is written, so a rejected payload
// leaves the pick untouched. Unknown fields return ErrUnknownField; result
// fields outside the enum return ErrInvalidResult.
func (p *Pick) ApplyFields(fields map[string]interface{}) error {
	setters := make([]func(), 0, len(fields))
	for name, value := range fields {
		if !UpdatableFields[name] {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		setter, err := p.fieldSetter(name, value)
		if err != nil {
			return err
		}
		setters = append(setters, setter)
	}
	for _, set := range setters {
		set()
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Pick) fieldSetter(name string, value interface{}) (func(), error) {
	switch name {
	case "result", "ats_result", "ou_result":
		result, err := toResult(value)
		if err != nil {
			return nil, err
		}
		return func() {
			switch name {
			case "result":
				p.Result = result
			case "ats_result":
				p.ATSResult = result
			case "ou_result":
				p.OUResult = result
			}
		}, nil
	case "confidence":
		f, err := toFloat(name, value)
		if err != nil {
			return nil, err
		}
		return func() { p.Confidence = f }, nil
	case "moneyline_pick":
		s := fmt.Sprintf("%v", value)
		return func() { p.MoneylinePick = s }, nil
	case "spread_pick":
		s := fmt.Sprintf("%v", value)
		return func() { p.SpreadPick = s }, nil
	case "total_pick":
		s := fmt.Sprintf("%v", value)
		return func() { p.TotalPick = s }, nil
	case "home_score":
		n, err := toInt(name, value)
		if err != nil {
			return nil, err
		}
		return func() { p.Game.HomeScore = &n }, nil
	case "away_score":
		n, err := toInt(name, value)
		if err != nil {
			return nil, err
		}
		return func() { p.Game.AwayScore = &n }, nil
	case "moneyline_edge":
		f, err := toFloat(name, value)
		if err != nil {
			return nil, err
		}
		return func() { p.MoneylineEdge = f }, nil
	case "spread_edge":
		f, err := toFloat(name, value)
		if err != nil {
			return nil, err
		}
		return func() { p.SpreadEdge = f }, nil
	case "total_edge":
		f, err := toFloat(name, value)
		if err != nil {
			return nil, err
		}
		return func() { p.TotalEdge = f }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
}

// FieldValue returns the current value of a whitelisted field, used to build
// inverse payloads when a batch is rolled back. Score fields return nil when
// unset.
func (p *Pick) FieldValue(name string) (interface{}, bool) {
	switch name {
	case "result":
		return string(p.Result), true
	case "ats_result":
		return string(p.ATSResult), true
	case "ou_result":
		return string(p.OUResult), true
	case "confidence":
		return p.Confidence, true
	case "moneyline_pick":
		return p.MoneylinePick, true
	case "spread_pick":
		return p.SpreadPick, true
	case "total_pick":
		return p.TotalPick, true
	case "home_score":
		if p.Game.HomeScore == nil {
			return nil, true
		}
		return *p.Game.HomeScore, true
	case "away_score":
		if p.Game.AwayScore == nil {
			return nil, true
		}
		return *p.Game.AwayScore, true
	case "moneyline_edge":
		return p.MoneylineEdge, true
	case "spread_edge":
		return p.SpreadEdge, true
	case "total_edge":
		return p.TotalEdge, true
	default:
		return nil, false
	}
}

func toResult(value interface{}) (MarketResult, error) {
	var result MarketResult
	switch v := value.(type) {
	case MarketResult:
		result = v
	case string:
		result = MarketResult(v)
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidResult, value)
	}
	if !result.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, result)
	}
	return result, nil
}

func toFloat(name string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("field %s: expected numeric value, got %T", name, value)
	}
}

func toInt(name string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("field %s: expected integer value, got %T", name, value)
	}
}
