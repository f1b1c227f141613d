package session

import "testing"

func TestFromParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
		want   int64
	}{
		{"viewer_id", map[string]interface{}{"viewer_id": float64(7)}, 7},
		{"account_id", map[string]interface{}{"account_id": float64(3)}, 3},
		{"viewer_id wins", map[string]interface{}{"viewer_id": float64(7), "account_id": float64(3)}, 7},
		{"missing", map[string]interface{}{}, 0},
		{"zero rejected", map[string]interface{}{"viewer_id": float64(0)}, 0},
		{"negative rejected", map[string]interface{}{"viewer_id": float64(-1)}, 0},
		{"wrong type", map[string]interface{}{"viewer_id": "7"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromParams(tt.params)
			if v.AccountID != tt.want {
				t.Errorf("AccountID = %d, want %d", v.AccountID, tt.want)
			}
			if v.Known() != (tt.want > 0) {
				t.Errorf("Known() = %v, want %v", v.Known(), tt.want > 0)
			}
		})
	}
}
