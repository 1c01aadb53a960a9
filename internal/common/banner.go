package common

import (
	"github.com/ternarybob/banner"
)

// PrintBanner displays the tool banner
func PrintBanner(tool string) {
	banner.Print(tool, GetVersion())
}
