package handler

type ContextKey string

var (
	SubCtxKey       ContextKey = "sub"
	ActorCtx        ContextKey = "actor"
	UserInfoCtx     ContextKey = "userInfo"
	RoleInfoCtx     ContextKey = "roleInfo"
	DepartmentCtx   ContextKey = "departmentInfo"
	OrgUnitCtx      ContextKey = "orgUnitInfo"
	CatalogCtx      ContextKey = "catalogInfo"
	CatalogItemCtx  ContextKey = "catalogItemInfo"
	AreaCtx         ContextKey = "areaInfo"
	StoreCtx        ContextKey = "storeInfo"
)
