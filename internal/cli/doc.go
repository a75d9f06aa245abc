// Package cli provides the terminal user interface components for cookbook.
//
// The package uses [Bubbletea] for the interactive browser, [Huh] for the
// recipe form and [Lipgloss] for styling. Components follow the standard
// Bubbletea Model-View-Update architecture and only talk to the recipe
// collection through internal/collection and internal/editor.
//
// # Components
//
//   - Browser: filterable recipe list. Toggles ingredient and step panels,
//     rates with the digit keys, deletes after confirmation and refreshes
//     whenever the collection store publishes a new snapshot.
//   - RecipeForm: create/edit form bound to an editor.Editor draft.
//
// Notifications raised while the browser runs reach it through
// [ProgramSender], which turns them into status-line messages.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Huh]: https://github.com/charmbracelet/huh
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
