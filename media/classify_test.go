package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		filename string
		want     Category
	}{
		{"cat.png", CategoryImage},
		{"cat.jpg", CategoryImage},
		{"cat.jpeg", CategoryImage},
		{"cat.gif", CategoryImage},
		{"cat.webp", CategoryImage},
		{"cat.heic", CategoryImage},
		{"CAT.PNG", CategoryImage},
		{"clip.mp4", CategoryVideo},
		{"clip.mov", CategoryVideo},
		{"clip.mkv", CategoryVideo},
		{"clip.avi", CategoryVideo},
		{"Clip.MP4", CategoryVideo},
		{"doc.pdf", CategoryUnsupported},
		{"archive.tar.gz", CategoryUnsupported},
		{"noext", CategoryUnsupported},
		{"", CategoryUnsupported},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.filename), "Classify(%q)", tc.filename)
	}
}
