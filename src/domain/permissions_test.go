package domain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"feedbackflow/src/domain"
)

var _ = Describe("Permissions", func() {
	DescribeTable("HasPermission",
		func(role domain.Role, permission domain.Permission, expected bool) {
			Expect(domain.HasPermission(role, permission)).To(Equal(expected))
		},
		Entry("admin manages the organization", domain.RoleAdmin, domain.PermOrganizationManage, true),
		Entry("admin manages users", domain.RoleAdmin, domain.PermUsersManage, true),
		Entry("admin sees financial analytics", domain.RoleAdmin, domain.PermAnalyticsViewFinancial, true),
		Entry("manager views users", domain.RoleManager, domain.PermUsersView, true),
		Entry("manager cannot manage users", domain.RoleManager, domain.PermUsersManage, false),
		Entry("manager cannot see financial analytics", domain.RoleManager, domain.PermAnalyticsViewFinancial, false),
		Entry("user views analytics", domain.RoleUser, domain.PermAnalyticsView, true),
		Entry("user cannot export", domain.RoleUser, domain.PermAnalyticsExport, false),
		Entry("unknown role grants nothing", domain.Role("guest"), domain.PermAnalyticsView, false),
	)

	It("accepts any of several permissions", func() {
		Expect(domain.HasAnyPermission(domain.RoleManager, domain.PermUsersManage, domain.PermUsersView)).To(BeTrue())
		Expect(domain.HasAnyPermission(domain.RoleUser, domain.PermUsersManage, domain.PermUsersView)).To(BeFalse())
		Expect(domain.HasAnyPermission(domain.RoleAdmin)).To(BeFalse())
	})

	Context("when parsing roles", func() {
		It("normalizes case and surrounding spaces", func() {
			role, err := domain.ParseRole("  Manager ")

			Expect(err).NotTo(HaveOccurred())
			Expect(role).To(Equal(domain.RoleManager))
		})

		It("rejects unknown roles", func() {
			_, err := domain.ParseRole("owner")

			Expect(err).To(MatchError(ContainSubstring("owner")))
		})
	})

	It("returns a copy of the role permissions", func() {
		perms := domain.PermissionsFor(domain.RoleUser)
		perms[0] = domain.PermOrganizationManage

		Expect(domain.HasPermission(domain.RoleUser, domain.PermOrganizationManage)).To(BeFalse())
	})
})
