package dashboard

import (
	"fmt"
	"strings"
)

// htmlHead returns the common HTML head section. A positive refreshSeconds
// makes the page reload itself, used while issues are loading.
func htmlHead(title, description string, refreshSeconds int) string {
	if description == "" {
		description = "Browse and sort the issues of your GitHub repositories"
	}

	refresh := ""
	if refreshSeconds > 0 {
		refresh = fmt.Sprintf(`<meta http-equiv="refresh" content="%d">`, refreshSeconds)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0, viewport-fit=cover">
	<meta name="description" content="%s">
	%s
	<link rel="icon" type="image/svg+xml" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='0.9em' font-size='90'>📋</text></svg>">
	<title>%s - Github Repo Issues</title>
	%s
</head>`, escapeHTML(description), refresh, escapeHTML(title), commonCSS())
}

// commonCSS returns the shared CSS styles used across all pages.
func commonCSS() string {
	return `<style>
		:root {
			--bg-primary: #f5f5f5;
			--bg-secondary: white;
			--bg-alt: #eef1f4;
			--text-primary: #333;
			--text-secondary: #666;
			--link-color: #0066cc;
			--button-bg: #0066cc;
			--button-hover: #0052a3;
			--border-color: #e0e0e0;
			--shadow: rgba(0,0,0,0.1);
			--error-text: #c0392b;
		}
		[data-theme="dark"] {
			--bg-primary: #1a1a1a;
			--bg-secondary: #2d2d2d;
			--bg-alt: #333;
			--text-primary: #e0e0e0;
			--text-secondary: #b0b0b0;
			--link-color: #4d9fff;
			--button-bg: #4d9fff;
			--button-hover: #3d89ef;
			--border-color: #404040;
			--shadow: rgba(0,0,0,0.3);
			--error-text: #ff6b6b;
		}
		* { box-sizing: border-box; margin: 0; padding: 0; }
		body { font-family: system-ui, -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; padding: 20px; background: var(--bg-primary); color: var(--text-primary); transition: background-color 0.3s, color 0.3s; line-height: 1.6; }
		.container { max-width: 1200px; margin: 0 auto; }
		h1 { margin-bottom: 10px; font-size: 2rem; font-weight: 600; }
		h2 { font-size: 1.5rem; font-weight: 600; margin-bottom: 15px; }
		.highlight { color: var(--link-color); }
		.nav { margin-bottom: 30px; display: flex; align-items: center; gap: 15px; flex-wrap: wrap; }
		.nav a { color: var(--link-color); text-decoration: none; }
		.nav a:hover { text-decoration: underline; }
		.theme-toggle, .button { padding: 8px 16px; background: var(--button-bg); color: white; border: none; border-radius: 4px; cursor: pointer; font-size: 14px; transition: background-color 0.3s; }
		.theme-toggle:hover, .button:hover { background: var(--button-hover); }
		.button:disabled { opacity: 0.5; cursor: not-allowed; }
		.empty { text-align: center; padding: 40px; color: var(--text-secondary); }
		.loading-container { display: flex; align-items: center; justify-content: center; padding: 40px; }
		.loading-spinner { width: 25px; height: 25px; border: 3px solid var(--border-color); border-top-color: var(--link-color); border-radius: 50%; animation: spin 0.8s linear infinite; }
		@keyframes spin { to { transform: rotate(360deg); } }
	</style>`
}

// loadingSpinner returns the HTML for the inline loading indicator.
func loadingSpinner() string {
	return `<div class="loading-container" role="status" aria-label="Loading...">
			<div class="loading-spinner"></div>
		</div>`
}

// themeToggleScript returns the common theme toggle JavaScript.
func themeToggleScript() string {
	return `<script>
		function toggleTheme() {
			const html = document.documentElement;
			const currentTheme = html.getAttribute('data-theme');
			const newTheme = currentTheme === 'dark' ? 'light' : 'dark';
			html.setAttribute('data-theme', newTheme);
			localStorage.setItem('theme', newTheme);
			updateToggleButton(newTheme);
		}

		function updateToggleButton(theme) {
			const button = document.querySelector('.theme-toggle');
			if (button) {
				button.textContent = theme === 'dark' ? '☀️ Light Mode' : '🌙 Dark Mode';
			}
		}

		(function() {
			const savedTheme = localStorage.getItem('theme') || 'light';
			document.documentElement.setAttribute('data-theme', savedTheme);
			updateToggleButton(savedTheme);
		})();
	</script>`
}

// htmlFooter returns the common HTML footer with all scripts.
func htmlFooter() string {
	return themeToggleScript() + `
</body>
</html>`
}

// buildNavigation returns the common navigation bar HTML.
func buildNavigation() string {
	return `<div class="nav">
			<a href="/">Issues</a>
			<a href="/key">API Key</a>
			<a href="/api/issues">API (JSON)</a>
			<button class="theme-toggle" onclick="toggleTheme()" aria-label="Toggle theme">🌙 Dark Mode</button>
		</div>`
}

// escapeHTML escapes special HTML characters to prevent XSS.
func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}

// externalLink creates a safe external link with proper security attributes.
func externalLink(url, text string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
		escapeHTML(url), escapeHTML(text))
}

// pageCSS returns page-specific CSS styles.
func pageCSS(styles string) string {
	return fmt.Sprintf("<style>%s</style>", styles)
}
