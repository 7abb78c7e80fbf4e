package htmltext

import "testing"

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Apache Lucene search engine", "Apache Lucene search engine"},
		{"inline", "<b>Apache</b> <i>Lucene</i>", "Apache Lucene"},
		{"entities", "AT&amp;T &lt;rocks&gt;", "AT&T <rocks>"},
		{"blocks", "<p>search</p><p>engine</p>", "search engine"},
		{"line break", "search<br>engine", "search engine"},
		{"script", "<script>var x = 1;</script>design", "design"},
		{"style", "<style>p{}</style><div>performance</div>", "performance"},
		{"whitespace", "  <p>  a \n b </p> ", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
