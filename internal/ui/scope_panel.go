package ui

// RenderScopePanel wraps scope content with a styled border.
// The beam itself is rendered by the scope package.
func RenderScopePanel(width, height int, scopeContent, legend string) string {
	content := scopeContent + "\n" + legend
	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(content)
}
