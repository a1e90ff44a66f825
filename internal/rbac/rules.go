package rbac

var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"session:*",
		"attempt:view-own",
	},
	"teacher": {
		"exam:create",
		"exam:delete",
		"exam:view",
		"attempt:view-all",
		"results:*",
		"events:view",
	},
	"admin": {
		"*", // everything
	},
}
