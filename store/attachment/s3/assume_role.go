package s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// newAssumeRoleProvider creates a cached credentials provider that assumes
// the configured role.
func newAssumeRoleProvider(cfg aws.Config, o *options) aws.CredentialsProvider {
	stsClient := sts.NewFromConfig(cfg)

	provider := stscreds.NewAssumeRoleProvider(stsClient, o.roleARN, func(ro *stscreds.AssumeRoleOptions) {
		if o.roleSessionName != "" {
			ro.RoleSessionName = o.roleSessionName
		}
		if o.externalID != "" {
			ro.ExternalID = aws.String(o.externalID)
		}
		if o.roleDuration > 0 {
			ro.Duration = o.roleDuration
		}
	})
	return aws.NewCredentialsCache(provider)
}
