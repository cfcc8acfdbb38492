package expr

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

func jsonUnmarshalString(s string, out interface{}) error {
	return json.Unmarshal([]byte(s), out)
}

func jsonMarshalString(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func hashValue(v interface{}, algorithm interface{}) (string, error) {
	algo, ok := algorithm.(string)
	if !ok {
		return "", fmt.Errorf("expr: States.Hash algorithm must be a string")
	}
	s, ok := v.(string)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		s = string(b)
	}
	switch algo {
	case "MD5":
		sum := md5.Sum([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "SHA-1":
		sum := sha1.Sum([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "SHA-256":
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "SHA-384":
		sum := sha512.Sum384([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case "SHA-512":
		sum := sha512.Sum512([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("expr: unsupported hash algorithm %q", algo)
	}
}

func base64Transform(name, s string) (string, error) {
	if name == "Base64Encode" {
		return base64.StdEncoding.EncodeToString([]byte(s)), nil
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("expr: States.Base64Decode: %w", err)
	}
	return string(out), nil
}
