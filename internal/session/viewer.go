package session

// Viewer identifies the account a request acts as. It is passed
// explicitly through call paths rather than read from ambient state,
// so two concurrent requests never share an identity.
type Viewer struct {
	AccountID int64
}

// Known reports whether the viewer carries a real account id.
func (v Viewer) Known() bool {
	return v.AccountID > 0
}

// FromParams extracts the viewer from decoded JSON-RPC params.
// "viewer_id" wins over "account_id" when both are present. Numbers
// arrive as float64 from the JSON decoder.
func FromParams(params map[string]interface{}) Viewer {
	for _, key := range []string{"viewer_id", "account_id"} {
		if raw, ok := params[key].(float64); ok && raw > 0 {
			return Viewer{AccountID: int64(raw)}
		}
	}
	return Viewer{}
}
