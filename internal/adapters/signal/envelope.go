package signal

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/dkeye/Hush/internal/core"
)

var validate = validator.New()

// decodePayload unmarshals and validates one envelope payload. Unknown
// shapes and failed constraints surface as protocol errors, not as
// silent pass-throughs.
func decodePayload(raw json.RawMessage, dst any) *core.SessionError {
	if len(raw) == 0 {
		return core.Protocol("Missing payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return core.Protocol("Malformed payload")
	}
	if err := validate.Struct(dst); err != nil {
		return core.Protocol("Invalid payload: " + err.Error())
	}
	return nil
}
