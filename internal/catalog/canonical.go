package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainRecord prefixes record hashes. The version suffix changes with the
// hashed representation.
const DomainRecord = "bookcat/record/v1"

// Normalize returns rec with every text field in Unicode NFC, so records
// typed on different systems compare and hash alike.
func Normalize(rec Record) Record {
	nfc := norm.NFC.String
	rec.ISBN13 = nfc(rec.ISBN13)
	rec.ISBN10 = nfc(rec.ISBN10)
	rec.Title = nfc(rec.Title)
	rec.Currency = nfc(rec.Currency)
	rec.Seller = nfc(rec.Seller)
	rec.SellerBranch = nfc(rec.SellerBranch)
	rec.Purchaser = nfc(rec.Purchaser)
	rec.ElectronicFormat = nfc(rec.ElectronicFormat)
	rec.CoverRequired = nfc(rec.CoverRequired)
	rec.Location = nfc(rec.Location)
	rec.Notes = nfc(rec.Notes)
	rec.Dimensions.MassUnits = nfc(rec.Dimensions.MassUnits)

	if rec.Authors != nil {
		authors := make([]Author, len(rec.Authors))
		for i, a := range rec.Authors {
			authors[i] = Author{Surname: nfc(a.Surname), GivenNames: nfcAll(a.GivenNames)}
		}
		rec.Authors = authors
	}
	rec.Publishers = nfcAll(rec.Publishers)
	rec.IgnoredFields = nfcAll(rec.IgnoredFields)
	return rec
}

func nfcAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = norm.NFC.String(s)
	}
	return out
}

// MarshalCanonical encodes a normalized record for hashing. HTML escaping
// is off and embedded third-party data is re-encoded with sorted keys.
func MarshalCanonical(rec Record) ([]byte, error) {
	rec = Normalize(rec)
	if len(rec.OpenLib) > 0 {
		var v any
		if err := json.Unmarshal(rec.OpenLib, &v); err != nil {
			return nil, fmt.Errorf("openlib: %w", err)
		}
		sorted, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("openlib: %w", err)
		}
		rec.OpenLib = sorted
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Hash returns the content hash of rec: hex SHA-256 over the domain, a
// zero byte, then the canonical encoding.
func Hash(rec Record) (string, error) {
	data, err := MarshalCanonical(rec)
	if err != nil {
		return "", fmt.Errorf("hash record %d: %w", rec.ID, err)
	}
	h := sha256.New()
	h.Write([]byte(DomainRecord))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
