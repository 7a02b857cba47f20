package main

import (
	"flag"
	"fmt"
	"os"

	"vbdreport.org/vbdreport/security"
)

func main() {
	name := flag.String("name", "field-device", "unique_name claim")
	role := flag.String("role", security.RoleAdmin, "role claim")
	hospital := flag.String("hospital", "", "hospital code claim")
	days := flag.Int("days", 365, "token lifetime in days")
	flag.Parse()

	secret := os.Getenv("VBD_SIGNING_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "VBD_SIGNING_SECRET is not set")
		os.Exit(1)
	}

	identity := &security.ReporterIdentity{
		Id:       1,
		UserName: *name,
		Role:     *role,
		Hospital: *hospital,
	}

	token, err := security.CreateIdentityToken(identity, secret, int64(*days)*24*3600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
