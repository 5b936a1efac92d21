// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultCharset is used for non UTF-8 input when no charset is configured
// for a language.
const DefaultCharset = "ISO-8859-1"

// maxFileSize bounds the decompressed size of a single catalog file.
const maxFileSize = 32 << 20

var (
	errTooLarge       = errors.New("decompressed catalog exceeds size limit")
	errUnknownCharset = errors.New("unknown charset")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	zstdOnce sync.Once
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// decoder returns a shared zstd decoder. DecodeAll is safe for concurrent use.
func decoder() (*zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdDec, zstdErr = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(maxFileSize))
	})

	return zstdDec, zstdErr
}

func decompress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionZstd:
		dec, err := decoder()
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}

		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress zstd data: %w", err)
		}

		return out, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()

		out, err := io.ReadAll(io.LimitReader(zr, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip data: %w", err)
		}

		if len(out) > maxFileSize {
			return nil, errTooLarge
		}

		return out, nil
	default:
		return data, nil
	}
}

// toUTF8 returns data as UTF-8 text, decoding it with charset when it is
// not valid UTF-8 already.
func toUTF8(data []byte, charset string) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return data, nil
	}

	if charset == "" {
		charset = DefaultCharset
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", errUnknownCharset, charset, err)
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s text: %w", charset, err)
	}

	return out, nil
}
