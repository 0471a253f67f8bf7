package client

import "context"

// SignInLessor logs a lessor in and keeps the session keys the profile editor reads.
func SignInLessor(ctx context.Context, c *Client, s *Storage, email, password string) error {
	res, err := c.LessorLogin(ctx, email, password)
	if err != nil {
		return err
	}
	s.setUint(KeyLessorID, res.LessorID)
	s.Set(KeyLessorToken, res.Token)
	return nil
}

func SignInUser(ctx context.Context, c *Client, s *Storage, email, password string) error {
	res, err := c.UserLogin(ctx, email, password)
	if err != nil {
		return err
	}
	s.setUint(KeyUserID, res.UserID)
	s.Set(KeyUserToken, res.Token)
	return nil
}
