// Package metadata is the client side of the metadata collaborator, a
// service that drafts titles, a description, hashtags and tags for a video
// from its file name.
//
//	c := metadata.NewClient("http://localhost:3000/api/generate", nil)
//	resp, err := c.Generate(ctx, metadata.Request{Filename: "goa-trip.mp4", Language: metadata.LanguageEnglish})
//
// The sampler core never calls it; the CLI does when -metadata-url is set.
package metadata
