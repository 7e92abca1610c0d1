package credential

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/xabinapal/shunctl/internal/secret"
)

// decodeBase64 decodes a strict standard-alphabet base64 value, with or
// without the inline prefix. Error messages never include the input.
func decodeBase64(field, value string) (secret.Secret, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(value, Base64Prefix))
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is declared base64 but empty", ErrCredentialDecode, field)
	}

	buf := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
	defer clear(buf)

	n, err := base64.StdEncoding.Strict().Decode(buf, []byte(raw))
	if err != nil {
		var cie base64.CorruptInputError
		if errors.As(err, &cie) {
			return nil, fmt.Errorf("%w: %s is not valid base64 (offset %d)", ErrCredentialDecode, field, int64(cie))
		}
		return nil, fmt.Errorf("%w: %s is not valid base64", ErrCredentialDecode, field)
	}
	return secret.FromBytes(buf[:n]), nil
}
