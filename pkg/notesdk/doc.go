/*
Package notesdk holds the JSON contracts of the notes API and a small client
for it.

# Contracts

Every request and response body of the HTTP API is a type in this package.
The server decodes requests into them and calls Validate at the boundary
before anything reaches the service layer:

	var req notesdk.CreateNoteRequest
	if errs := req.Validate(); errs != nil {
		// 400 validation_error with errs as details
	}

Field names on the wire are camelCase.

# Client and Session

Client performs the public calls. Register and Login return a Session that
carries the bearer token for everything else:

	client := notesdk.NewClient("http://localhost:8080")

	session, _, err := client.Login(ctx, "admin@acme.test", "password")
	if err != nil {
		return err
	}

	note, err := session.CreateNote(ctx, notesdk.CreateNoteRequest{
		Title:   "Quarterly plan",
		Content: "...",
		Tags:    []string{"planning"},
	})

Tokens are not refreshed. When a call fails with token_expired, log in
again and SetToken on the session.

# Errors

Non-2xx responses come back as *APIError. The package level sentinels match
by error code:

	_, err := session.CreateNote(ctx, req)
	if errors.Is(err, notesdk.ErrLimitReached) {
		apiErr, _ := notesdk.AsAPIError(err)
		fmt.Printf("%d/%d notes on the %s plan\n",
			apiErr.CurrentNotes, apiErr.MaxNotes, apiErr.SubscriptionPlan)
	}
*/
package notesdk
