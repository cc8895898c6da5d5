// Package schema lists the tables migrated at startup.
package schema

import (
	authmodels "github.com/RigelNana/arktutor/services/auth-service/models"
	studymodels "github.com/RigelNana/arktutor/services/study-service/models"
	usermodels "github.com/RigelNana/arktutor/services/user-service/models"
)

// Models returns every model in dependency order.
func Models() []any {
	var all []any
	all = append(all, usermodels.All()...)
	all = append(all, authmodels.All()...)
	all = append(all, studymodels.All()...)
	return all
}
