package codec

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthpass/internal/credential"
	dErrors "healthpass/pkg/domain-errors"
	"healthpass/pkg/secrets"
	"healthpass/pkg/testutil"
)

// CodecSuite tests the authenticated encode/decode pipeline.
type CodecSuite struct {
	suite.Suite
	codec *Codec
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) SetupTest() {
	master, err := secrets.ParseMaster(testutil.TestMasterKey)
	s.Require().NoError(err)
	s.codec, err = New(master)
	s.Require().NoError(err)
}

func (s *CodecSuite) TestRoundTrip() {
	issued := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	variants := []credential.Variant{
		credential.VariantFull,
		credential.VariantEmergency,
		credential.VariantLimited,
		credential.VariantTemporary,
	}
	for _, variant := range variants {
		s.Run(variant.String(), func() {
			original, err := testutil.NewCredentialBuilder().
				Variant(variant).
				IssuedAt(issued).
				Build()
			s.Require().NoError(err)

			encoded, err := s.codec.Encode(original)
			s.Require().NoError(err)
			s.NotEmpty(encoded)

			decoded, dropped, err := s.codec.Decode(encoded)
			s.Require().NoError(err)
			s.Empty(dropped)
			s.Equal(original, decoded)
		})
	}
}

func (s *CodecSuite) TestEncodeIsArmoredAndNonDeterministic() {
	cred, err := testutil.NewCredentialBuilder().Build()
	s.Require().NoError(err)

	first, err := s.codec.Encode(cred)
	s.Require().NoError(err)
	second, err := s.codec.Encode(cred)
	s.Require().NoError(err)

	// Fresh nonce every time; identical plaintexts never repeat ciphertext.
	s.NotEqual(first, second)

	_, err = base64.RawURLEncoding.DecodeString(first)
	s.Require().NoError(err, "output must stay within the base64url alphabet")
}

func (s *CodecSuite) TestDecodeRejectsTampering() {
	cred, err := testutil.NewCredentialBuilder().Build()
	s.Require().NoError(err)
	encoded, err := s.codec.Encode(cred)
	s.Require().NoError(err)

	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	s.Require().NoError(err)

	// Flip one bit at a spread of positions: nonce, ciphertext body, tag.
	for _, pos := range []int{0, 12, len(sealed) / 2, len(sealed) - 1} {
		tampered := append([]byte(nil), sealed...)
		tampered[pos] ^= 0x01

		_, _, err := s.codec.Decode(base64.RawURLEncoding.EncodeToString(tampered))
		s.Require().Error(err, "flipped byte at %d must not decode", pos)
		s.True(dErrors.HasCode(err, dErrors.CodeDecodeFailed))
	}
}

func (s *CodecSuite) TestDecodeRejectsWrongKey() {
	cred, err := testutil.NewCredentialBuilder().Build()
	s.Require().NoError(err)
	encoded, err := s.codec.Encode(cred)
	s.Require().NoError(err)

	other, err := New([]byte("a-completely-different-master-key"))
	s.Require().NoError(err)

	_, _, err = other.Decode(encoded)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDecodeFailed))
}

func (s *CodecSuite) TestDecodeRejectsMalformedInput() {
	cases := map[string]string{
		"empty":           "",
		"not base64":      "!!!not-base64!!!",
		"too short":       base64.RawURLEncoding.EncodeToString([]byte("short")),
		"plain base64":    base64.RawURLEncoding.EncodeToString([]byte(`{"v":1,"t":"full"}`)),
		"random garbage":  "aGVhbHRocGFzcw",
		"whitespace only": "   ",
	}
	for name, input := range cases {
		s.Run(name, func() {
			_, _, err := s.codec.Decode(input)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeDecodeFailed))
		})
	}
}

func (s *CodecSuite) TestNewRejectsEmptyMaster() {
	_, err := New(nil)
	s.Require().Error(err)
}
