package bridge

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(t *testing.T, body string) []byte {
	t.Helper()
	buf := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[4:], body)
	return buf
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr error
	}{
		{name: "valid", input: frameOf(t, `{"id":1,"method":"ping"}`), want: `{"id":1,"method":"ping"}`},
		{name: "eof", input: nil, wantErr: io.EOF},
		{name: "zero length", input: []byte{0, 0, 0, 0}, wantErr: ErrMalformedFrame},
		{name: "too large", input: binary.LittleEndian.AppendUint32(nil, MaxFrameSize+1), wantErr: ErrMalformedFrame},
		{name: "truncated length", input: []byte{1, 0}, wantErr: io.ErrUnexpectedEOF},
		{name: "truncated body", input: frameOf(t, "{}")[:5], wantErr: io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFrame(bytes.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, success(7, "pong")))

	body, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response","id":7,"success":true,"result":"pong"}`, string(body))
	assert.Zero(t, buf.Len())
}

func TestWriteFrameNullResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, success(5, nil)))

	body, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response","id":5,"success":true,"result":null}`, string(body))
}

func TestWriteFrameError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, failure(3, &Error{Code: CodeNotFound, Message: "path not found: /x"})))

	body, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response","id":3,"success":false,"result":null,"error":{"code":"NOT_FOUND","message":"path not found: /x"}}`, string(body))
}

func TestWriteFrameBinaryResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, success(1, map[string]any{"key": "k", "png": []byte{0x89, 'P'}})))

	body, err := ReadFrame(&buf)
	require.NoError(t, err)
	var resp struct {
		Result struct {
			Key string `json:"key"`
			PNG []byte `json:"png"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, []byte{0x89, 'P'}, resp.Result.PNG)
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"id":9,"method":"getPlatformIcon","args":"/a.jpg"}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), req.ID)
	assert.Equal(t, MethodGetPlatformIcon, req.Method)
	assert.JSONEq(t, `"/a.jpg"`, string(req.Args))

	_, err = DecodeRequest([]byte(`{"id":1}`))
	assert.Equal(t, CodeMalformedRequest, Classify(err).Code)

	_, err = DecodeRequest([]byte(`not json`))
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, CodeMalformedRequest, be.Code)
}
