package constant

// UserRole is the marketplace-wide role carried on the user account.
type UserRole string

const (
	UserRoleCustomer            UserRole = "customer"
	UserRoleShopOwner           UserRole = "shop_owner"
	UserRoleAuthorizedSignatory UserRole = "authorized_signatory"
)

// SignatoryRoles are the roles allowed to accept, reject and endorse requests.
var SignatoryRoles = []UserRole{UserRoleAuthorizedSignatory, UserRoleShopOwner}

func (r UserRole) CanEndorse() bool {
	for _, role := range SignatoryRoles {
		if r == role {
			return true
		}
	}
	return false
}
