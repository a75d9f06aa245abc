// Package model defines the data structures used throughout cookbook.
//
// These types are shared by the API client, the reference server and the
// terminal UI. JSON tags follow the wire names of the recipe API, which are
// fixed by existing deployments.
//
// # Recipe
//
// The [Recipe] struct is one cookbook entry:
//
//	type Recipe struct {
//	    ID          string       // "_id", server-assigned
//	    Name        string       // "recipename"
//	    Author      string
//	    PrepTime    float64      // "preptime", minutes
//	    CookTime    float64      // "cooktime", minutes
//	    Servings    float64
//	    Rating      int          // 0..5
//	    Calories    *float64     // optional
//	    Ingredients []Ingredient
//	    Steps       []Step
//	}
//
// Wire fields the client does not know about are kept in Recipe.Extra and
// written back on encode.
//
// # Config
//
// The [Config] struct holds client and server settings loaded by the CLI.
package model
