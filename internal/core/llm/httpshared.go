package llm

import (
	"io"
	"strings"
)

// maxLLMResponseBytes bounds how much of a provider's HTTP response body
// the raw net/http adapters (huggingface, apifreellm) will read.
const maxLLMResponseBytes = 1 << 20 // 1 MiB

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}

func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxLLMResponseBytes))
}
