// Package sdk is a typed client for the Halo extension API.
//
// Every resource exposes the same six operations (Create, Get, List, Patch,
// Update, Delete) through a ResourceClient:
//
//	client, err := sdk.NewClient(sdk.ClientConfig{
//		BaseURL: "https://blog.example.com",
//		Token:   os.Getenv("HALO_TOKEN"),
//	})
//	if err != nil {
//		return err
//	}
//
//	user, err := client.Users().Get(ctx, "admin")
//	if sdk.IsNotFound(err) {
//		// ...
//	}
//
// Required parameters are checked before any request is sent; a missing name
// returns a *RequiredError. Non-2xx responses return an *APIError that
// matches the sentinel errors of this package with errors.Is.
package sdk
