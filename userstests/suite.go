package userstests

import (
	"github.com/restcontract/users-contract-tests/framework"
	"github.com/restcontract/users-contract-tests/servicedef"
)

// RunTestSuite runs every scenario against the API described by config. The scenarios do not
// depend on each other; with config.Parallelism above 1 they run concurrently.
func RunTestSuite(
	config *SuiteConfig,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		subtest := func(name string, action func(*T)) framework.Subtest {
			return framework.Subtest{
				Name: name,
				Action: func(c *framework.Context) {
					action(&T{context: c, config: config})
				},
			}
		}
		c.RunGroup(config.Parallelism,
			subtest(servicedef.FetchUsersOnPageName, DoFetchUsersOnPageTest),
			subtest(servicedef.FetchUserByIDName, DoFetchUserByIDTest),
			subtest(servicedef.CreateUserName, DoCreateUserTest),
		)
	})
}
