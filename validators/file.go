package validators

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"
)

const maxFileNameLength = 255

// ExtensionValidator checks the file name's extension against the
// configured allow-set (.pdf, .docx and .txt by default). The returned
// error names both the rejected extension and the allowed set.
func ExtensionValidator(fileName string) error {
	if fileName == "" {
		return fmt.Errorf("no file name provided")
	}

	if len(fileName) > maxFileNameLength {
		return fmt.Errorf("file name is too long")
	}

	allowed := viper.GetStringSlice("upload.allowed_extensions")
	ext := strings.ToLower(path.Ext(fileName))

	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return nil
		}
	}

	return fmt.Errorf("unsupported file extension '%s'. Allowed extensions are: %s", ext, strings.Join(allowed, ", "))
}
