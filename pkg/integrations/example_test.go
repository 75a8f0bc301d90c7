package integrations_test

import (
	"fmt"

	"github.com/matzehuels/converge/pkg/integrations"
)

func ExampleRepositoryHost() {
	fmt.Println(integrations.RepositoryHost("https://repo1.maven.org/maven2"))
	fmt.Println(integrations.RepositoryHost("http://nexus.internal:8081/repository/maven-public"))
	// Output:
	// repo1.maven.org
	// nexus.internal:8081
}
