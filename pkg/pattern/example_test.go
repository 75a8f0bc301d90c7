package pattern_test

import (
	"fmt"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/pattern"
)

func ExamplePattern_Matches() {
	api := artifact.MustParse("xerces:xerces-api:2.6")
	impl := artifact.MustParse("xerces:xercesImpl:2.9")

	group := pattern.Parse("xerces")
	exact := pattern.Parse("xerces:xerces-api")

	fmt.Println(group.Matches(api), group.Matches(impl))
	fmt.Println(exact.Matches(api), exact.Matches(impl))
	// Output:
	// true true
	// true false
}
