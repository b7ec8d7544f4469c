package auth

import (
	"fmt"
	"io"
	"strings"
)

// AppPreferencesURL is where Reddit script applications are registered
const AppPreferencesURL = "https://www.reddit.com/prefs/apps"

// ShowAppRegistrationGuide explains how to obtain an app id and secret
func ShowAppRegistrationGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"REDDIT API CREDENTIALS",
		rule,
		"",
		"redditstats signs in with the password grant, which needs a",
		"\"script\" application registered to your account.",
		"",
		"STEP 1: Open " + AppPreferencesURL + " while logged in",
		"STEP 2: Click \"create another app...\" and choose the \"script\" type",
		"STEP 3: Use any name; set the redirect uri to http://localhost:8080",
		"STEP 4: Copy the two values shown after saving:",
		"   app id      the string under \"personal use script\"",
		"   app secret  the value labelled \"secret\"",
		"",
		"The account you log in with must be a developer of the app.",
		"Accounts with two-factor authentication cannot use the password grant.",
		"",
		rule,
		"",
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// ShowQuickGuide prints a one-line reminder for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintf(w, "\nApp id and secret: %s -> create app -> script. Type 'help' for details.\n", AppPreferencesURL)
}
