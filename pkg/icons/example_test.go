package icons_test

import (
	"fmt"
	"path/filepath"

	"github.com/orchestree/orchestree/pkg/icons"
)

func ExampleResolver_Resolve() {
	rules := []icons.Rule{
		{Pattern: `(?i)s3|bucket`, Target: `aws\storage\s3.svg`},
		{Pattern: `(?i)lambda`, Target: "aws/compute/lambda.svg"},
	}
	r, err := icons.NewResolverFromRules(rules, "/icons/blank.svg", "/icons")
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, id := range []string{"S3 Bucket", "lambda", "mainframe"} {
		fmt.Println(id, "=>", filepath.ToSlash(r.Resolve(id)))
	}
	// Output:
	// S3 Bucket => /icons/aws/storage/s3.svg
	// lambda => /icons/aws/compute/lambda.svg
	// mainframe => /icons/blank.svg
}
