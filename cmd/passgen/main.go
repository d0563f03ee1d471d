// Package main provides a CLI tool for minting operator tokens and issuing
// or inspecting credentials offline with dev keys. These artifacts use the
// dev master key and will NOT verify against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"healthpass/internal/credential"
	"healthpass/internal/credential/authz"
	"healthpass/internal/credential/codec"
	"healthpass/internal/credential/integrity"
	"healthpass/internal/credential/validate"
	"healthpass/internal/operatortoken"
	"healthpass/internal/platform/config"
	id "healthpass/pkg/domain"
	"healthpass/pkg/secrets"
)

func main() {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	issueCmd := flag.NewFlagSet("issue", flag.ExitOnError)
	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)

	// Operator token flags
	tokenOperator := tokenCmd.String("operator", "", "Operator ID (required)")
	tokenRole := tokenCmd.String("role", "doctor", "Role: patient, doctor or hospital")
	tokenTTL := tokenCmd.Duration("ttl", 8*time.Hour, "Token time-to-live")

	// Issue flags
	issueVariant := issueCmd.String("variant", "temporary", "Variant: full, limited or temporary")
	issuePatient := issueCmd.String("patient", "", "Patient ID (required)")
	issueIssuer := issueCmd.String("issuer", "cli", "Issuer ID")
	issuePerms := issueCmd.String("permissions", "", "Comma-separated permission tokens")
	issueHospital := issueCmd.String("hospital", "", "Bind to hospital ID")
	issueDoctor := issueCmd.String("doctor", "", "Bind to doctor ID")
	issueVisit := issueCmd.String("visit", "", "Visit ID (limited variant)")
	issueHours := issueCmd.Int("hours", credential.DefaultTemporaryLifetimeHours, "Lifetime in hours (temporary variant)")

	// Inspect flags
	inspectEncoded := inspectCmd.String("encoded", "", "Encoded credential string (required)")

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "token":
		_ = tokenCmd.Parse(os.Args[2:])
		runToken(*tokenOperator, *tokenRole, *tokenTTL)
	case "issue":
		_ = issueCmd.Parse(os.Args[2:])
		runIssue(*issueVariant, *issuePatient, *issueIssuer, *issuePerms, *issueHospital, *issueDoctor, *issueVisit, *issueHours)
	case "inspect":
		_ = inspectCmd.Parse(os.Args[2:])
		runInspect(*inspectEncoded)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: passgen <token|issue|inspect> [flags]")
	os.Exit(2)
}

func devCodec() *codec.Codec {
	cfg := config.FromEnv()
	master, err := secrets.ParseMaster(cfg.MasterKey)
	fatal(err)
	c, err := codec.New(master)
	fatal(err)
	return c
}

func runToken(operator, role string, ttl time.Duration) {
	if operator == "" {
		fatal(fmt.Errorf("-operator is required"))
	}
	parsedRole, err := authz.ParseRole(role)
	fatal(err)
	cfg := config.FromEnv()
	svc := operatortoken.NewService(cfg.TokenSigningKey, cfg.TokenIssuer, ttl)
	token, err := svc.Generate(id.OperatorID(operator), parsedRole)
	fatal(err)
	printJSON(map[string]string{
		"token": token,
		"usage": "Authorization: Bearer " + token,
	})
}

func runIssue(variant, patient, issuer, perms, hospital, doctor, visit string, hours int) {
	if patient == "" {
		fatal(fmt.Errorf("-patient is required"))
	}
	params := credential.BuildParams{
		PatientID: id.PatientID(patient),
		IssuerID:  id.OperatorID(issuer),
		Binding: credential.Binding{
			HospitalID: id.HospitalID(hospital),
			DoctorID:   id.DoctorID(doctor),
		},
	}
	if perms != "" {
		params.Permissions = strings.Split(perms, ",")
	}

	var (
		cred *credential.Credential
		err  error
	)
	switch credential.Variant(variant) {
	case credential.VariantFull:
		cred, err = credential.NewFull(params)
	case credential.VariantLimited:
		cred, err = credential.NewLimited(params, credential.VisitContext{VisitID: id.VisitID(visit)})
	case credential.VariantTemporary:
		cred, err = credential.NewTemporary(params, hours)
	default:
		err = fmt.Errorf("unsupported variant for CLI issuance: %s (emergency needs the record store)", variant)
	}
	fatal(err)

	encoded, err := devCodec().Encode(cred)
	fatal(err)
	digest, err := integrity.Hash(cred)
	fatal(err)
	printJSON(map[string]any{
		"credential_id": cred.ID.String(),
		"variant":       cred.Variant.String(),
		"expires_at":    cred.ExpiresAt.Format(time.RFC3339),
		"encoded":       encoded,
		"digest":        digest,
		"size_bytes":    len(encoded),
	})
}

func runInspect(encoded string) {
	if encoded == "" {
		fatal(fmt.Errorf("-encoded is required"))
	}
	cred, dropped, err := devCodec().Decode(encoded)
	fatal(err)
	verdict := validate.Check(validate.Input{Credential: cred, DroppedPermissions: dropped})
	digest, err := integrity.Hash(cred)
	fatal(err)
	printJSON(map[string]any{
		"credential_id": cred.ID.String(),
		"variant":       cred.Variant.String(),
		"patient_id":    cred.PatientID.String(),
		"issued_at":     cred.IssuedAt.Format(time.RFC3339),
		"expires_at":    cred.ExpiresAt.Format(time.RFC3339),
		"permissions":   cred.Permissions,
		"verdict": map[string]any{
			"is_valid":   verdict.IsValid,
			"is_expired": verdict.IsExpired,
			"errors":     verdict.Errors,
			"warnings":   verdict.Warnings,
		},
		"digest": digest,
	})
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "passgen:", err)
		os.Exit(1)
	}
}
