package export

import (
	"encoding/json"
	"strings"

	"github.com/leynos/frankie/internal/domain"
)

// JSONL renders one JSON object per comment, one per line, each line
// ending with a single newline. Absent optional fields are omitted.
func JSONL(comments []domain.ReviewComment) (string, error) {
	var builder strings.Builder
	for _, record := range Records(comments) {
		data, err := json.Marshal(record)
		if err != nil {
			return "", domain.WrapError(domain.ErrIO, err, "serialise comment %d", record.ID)
		}
		builder.Write(data)
		builder.WriteByte('\n')
	}
	return builder.String(), nil
}
