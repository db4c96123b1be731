package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", paraOpen + "hello</p>"},
		{
			"bold and code",
			"**bold** and `code`",
			paraOpen + strongOpen + "bold</strong> and " + codeOpen + "code</code></p>",
		},
		{
			"mixed list block",
			"**bold** and `code` and\n- item1\n- item2",
			listOpen + strongOpen + "bold</strong> and " + codeOpen + "code</code> and\n" +
				itemOpen + "item1</li>\n" + itemOpen + "item2</li></ul>",
		},
		{
			"blocks joined without separator",
			"first\n\nsecond",
			paraOpen + "first</p>" + paraOpen + "second</p>",
		},
		{
			"list after blank line",
			"intro\n\n- a\n  - b",
			paraOpen + "intro</p>" + listOpen + itemOpen + "a</li>\n" + itemOpen + "b</li></ul>",
		},
		{"dash without blank", "-item", paraOpen + "-item</p>"},
		{"unclosed bold", "**open", paraOpen + "**open</p>"},
		{"unclosed code", "a ` b", paraOpen + "a ` b</p>"},
		{"empty code span", "``", paraOpen + "``</p>"},
		{"empty bold", "****", paraOpen + strongOpen + "</strong></p>"},
		{
			"code inside bold",
			"**a `b` c**",
			paraOpen + strongOpen + "a " + codeOpen + "b</code> c</strong></p>",
		},
		{
			"bold markers inside code stay literal",
			"`**x**`",
			paraOpen + codeOpen + "**x**</code></p>",
		},
		{
			"bold does not close inside code",
			"**a `x**y` b**",
			paraOpen + strongOpen + "a " + codeOpen + "x**y</code> b</strong></p>",
		},
		{"bold does not span lines", "**a\nb**", paraOpen + "**a\nb**</p>"},
		{"trailing blank block", "a\n\n", paraOpen + "a</p>" + paraOpen + "</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTML(tt.in))
		})
	}
}

func TestToHTMLLeavesMarkupAlone(t *testing.T) {
	assert.Equal(t, paraOpen+"<b>x</b></p>", ToHTML("<b>x</b>"))
}

func TestSafeHTML(t *testing.T) {
	out := SafeHTML("**hi** <script>alert(1)</script><img src=x onerror=alert(1)>")

	assert.Contains(t, out, strongOpen+"hi</strong>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "onerror")
}

func TestSafeHTMLKeepsClasses(t *testing.T) {
	md := "- `x`"
	assert.Equal(t, ToHTML(md), SafeHTML(md))
}
