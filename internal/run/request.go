package run

import "fmt"

type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Request carries everything a single run needs, including the AWS
// credentials, so nothing downstream reaches into ambient environment state.
type Request struct {
	Image       string
	Command     string
	LogGroup    string
	LogStream   string
	Credentials Credentials
}

func (r *Request) Validate() error {
	if len(r.Image) == 0 {
		return fmt.Errorf("%w: docker image is required", ErrInvalidRequest)
	}

	if len(r.Command) == 0 {
		return fmt.Errorf("%w: bash command is required", ErrInvalidRequest)
	}

	if len(r.LogGroup) == 0 {
		return fmt.Errorf("%w: cloudwatch log group is required", ErrInvalidRequest)
	}

	if len(r.LogStream) == 0 {
		return fmt.Errorf("%w: cloudwatch log stream is required", ErrInvalidRequest)
	}

	if len(r.Credentials.AccessKeyID) == 0 {
		return fmt.Errorf("%w: aws access key id is required", ErrInvalidRequest)
	}

	if len(r.Credentials.SecretAccessKey) == 0 {
		return fmt.Errorf("%w: aws secret access key is required", ErrInvalidRequest)
	}

	if len(r.Credentials.Region) == 0 {
		return fmt.Errorf("%w: aws region is required", ErrInvalidRequest)
	}

	return nil
}

// ShellCmd returns the argv used as the container entrypoint. The command
// string travels as a single shell argument, so it is never interpolated or
// re-escaped on the way in.
func (r *Request) ShellCmd() []string {
	return []string{"/bin/bash", "-c", r.Command}
}
