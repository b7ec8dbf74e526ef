package remote

import (
	"github.com/klauspost/compress/zstd"
)

// Object payloads are zstd-compressed on the wire. Both helpers use one-shot
// coding; object payloads are small enough that streaming buys nothing.

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
